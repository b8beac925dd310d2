package models

// Annotation records one price that was rendered with its time cost.
type Annotation struct {
	Raw      string       `yaml:"raw" json:"raw"`
	Currency CurrencyCode `yaml:"currency" json:"currency"`
	Value    string       `yaml:"value" json:"value"`
	Hours    float64      `yaml:"hours" json:"hours"`
	Cost     string       `yaml:"cost" json:"cost"`
}

// AnnotationFailure records a price-shaped match that could not be converted.
type AnnotationFailure struct {
	Raw    string `yaml:"raw" json:"raw"`
	Reason string `yaml:"reason" json:"reason"`
}
