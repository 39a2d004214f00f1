// Package models holds the prediction domain types shared between the
// orchestrator, the stores, and the session lifecycle.
package models

import (
	"time"

	id "olea/pkg/domain"
)

// BundleNames maps the model's class index to the coverage bundle it
// recommends.
var BundleNames = map[int]string{
	0: "Auto Comprehensive",
	1: "Auto Liability Basic",
	2: "Basic Health",
	3: "Family Comprehensive",
	4: "Health Dental & Vision",
	5: "Home Premium",
	6: "Home Standard",
	7: "Premium Health & Life",
	8: "Renter Basic",
	9: "Renter Premium",
}

// Result is the scoring model's answer: the recommended bundle with the
// model's confidence in it.
type Result struct {
	Bundle        string             `json:"purchased_coverage_bundle"`
	Confidence    float64            `json:"confidence"`
	Probabilities map[string]float64 `json:"probabilities,omitempty"`
}

// FeatureImportance is one feature's contribution to the recommendation.
type FeatureImportance struct {
	Feature    string  `json:"feature"`
	Importance float64 `json:"importance"`
	Direction  string  `json:"direction"`
}

// Explanation is the interpretability payload attached to an outcome when
// the explanation service answered.
type Explanation struct {
	Method             string              `json:"method"`
	FeatureImportances []FeatureImportance `json:"feature_importances"`
	Summary            string              `json:"summary"`
	Narrative          *string             `json:"narrative,omitempty"`
}

// Outcome is a completed prediction. Explanation is nil when the
// explanation call failed; the recommendation itself is still valid.
type Outcome struct {
	ID           id.PredictionID `json:"id"`
	FormID       id.FormID       `json:"form_id,omitempty"`
	ModelVersion string          `json:"model_version"`
	Result       Result          `json:"result"`
	Confidence   float64         `json:"confidence"`
	Explanation  *Explanation    `json:"explanation,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}
