package ledger

import (
	"testing"

	"github.com/rickgao/nse-data/internal/model"
)

func TestChunkTicks(t *testing.T) {
	mk := func(n int) []model.Tick { return make([]model.Tick, n) }

	tests := []struct {
		name     string
		rows     int
		size     int
		wantLens []int
	}{
		{"empty", 0, 3000, nil},
		{"under one chunk", 10, 3000, []int{10}},
		{"exact chunk", 3000, 3000, []int{3000}},
		{"one over", 3001, 3000, []int{3000, 1}},
		{"several chunks", 7500, 3000, []int{3000, 3000, 1500}},
		{"size one", 3, 1, []int{1, 1, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunks := chunkTicks(mk(tt.rows), tt.size)
			if len(chunks) != len(tt.wantLens) {
				t.Fatalf("got %d chunks, want %d", len(chunks), len(tt.wantLens))
			}
			total := 0
			for i, c := range chunks {
				if len(c) != tt.wantLens[i] {
					t.Errorf("chunk %d has %d rows, want %d", i, len(c), tt.wantLens[i])
				}
				total += len(c)
			}
			if total != tt.rows {
				t.Errorf("chunks cover %d rows, want %d", total, tt.rows)
			}
		})
	}
}

func TestNewAppliesChunkDefault(t *testing.T) {
	l := New(Config{}, nil, nil)
	if l.cfg.ChunkSize != DefaultChunkSize {
		t.Errorf("ChunkSize = %d, want %d", l.cfg.ChunkSize, DefaultChunkSize)
	}

	l = New(Config{ChunkSize: 500}, nil, nil)
	if l.cfg.ChunkSize != 500 {
		t.Errorf("ChunkSize = %d, want 500", l.cfg.ChunkSize)
	}
}
