package kbase

// Converter renders an HTML fragment as plain text suitable for embedding.
// Used for table fragments, where cell structure should survive as text.
type Converter interface {
	Convert(html string) (string, error)
}
