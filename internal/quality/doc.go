// Package quality scans a user's purchase history for structural anomalies
// and reports them with severities.
package quality
