package embed

// Anomaly describes one pain_embedding row that failed the verify check.
type Anomaly struct {
	PainEventID int64
	Reason      string
}

// Verify checks each stored vector for non-empty, numeric, not-all-zero
// content and reports anomalies instead of failing the whole batch.
func Verify(painEventID int64, vector []float32) *Anomaly {
	if len(vector) == 0 {
		return &Anomaly{PainEventID: painEventID, Reason: "empty_vector"}
	}

	allZero := true
	for _, v := range vector {
		if v != 0 {
			allZero = false
		}
		if v != v { // NaN check without importing math
			return &Anomaly{PainEventID: painEventID, Reason: "nan_component"}
		}
	}
	if allZero {
		return &Anomaly{PainEventID: painEventID, Reason: "all_zero_vector"}
	}
	return nil
}
