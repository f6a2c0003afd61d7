package complaint

import "context"

// UnknownLabel is the sentiment assigned when no classification is possible.
const UnknownLabel = "Tidak Diketahui"

// Sentiment is a classifier verdict. Confidence is a percentage in [0,100].
type Sentiment struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

// Unknown is the degraded classification result.
func Unknown() Sentiment {
	return Sentiment{Label: UnknownLabel}
}

// IsUnknown reports whether s carries no usable classification.
func (s Sentiment) IsUnknown() bool {
	return s.Label == "" || s.Label == UnknownLabel
}

// Classifier maps normalized complaint text to a sentiment.
//
// Implementations must not fail: an empty input, a missing model or a backend
// error all yield Unknown().
type Classifier interface {
	Classify(ctx context.Context, normalized string) Sentiment
}

// ClassifierFunc adapts a plain function to Classifier.
type ClassifierFunc func(ctx context.Context, normalized string) Sentiment

// Classify implements Classifier.
func (f ClassifierFunc) Classify(ctx context.Context, normalized string) Sentiment {
	return f(ctx, normalized)
}

// nopClassifier stands in when no model is configured.
type nopClassifier struct{}

func (nopClassifier) Classify(context.Context, string) Sentiment { return Unknown() }

// clamp keeps a classifier's confidence inside [0,100].
func clamp(s Sentiment) Sentiment {
	switch {
	case s.Label == "":
		return Unknown()
	case s.Confidence < 0 || s.Confidence != s.Confidence:
		s.Confidence = 0
	case s.Confidence > 100:
		s.Confidence = 100
	}
	return s
}
