package course

import "strings"

// embeddingTextSeparator joins the lines of the embedding text.
const embeddingTextSeparator = "\n"

// CourseSummary is the searchable tier-1 representation of a course.
type CourseSummary struct {
	CourseCode        string          `json:"course_code" yaml:"course_code"`
	Title             string          `json:"title" yaml:"title"`
	Department        string          `json:"department" yaml:"department"`
	Credits           int             `json:"credits" yaml:"credits"`
	DifficultyLevel   DifficultyLevel `json:"difficulty_level" yaml:"difficulty_level"`
	Format            CourseFormat    `json:"format" yaml:"format"`
	Instructor        string          `json:"instructor" yaml:"instructor"`
	ShortDescription  string          `json:"short_description" yaml:"short_description"`
	PrerequisiteCodes []string        `json:"prerequisite_codes,omitempty" yaml:"prerequisite_codes,omitempty"`
	Tags              []string        `json:"tags,omitempty" yaml:"tags,omitempty"`
	EmbeddingText     string          `json:"embedding_text,omitempty" yaml:"embedding_text,omitempty"`
}

// GenerateEmbeddingText builds the text that is embedded for vector search.
// The output depends only on the summary's fields, so identical summaries
// always embed identically. EmbeddingText itself is not an input.
func GenerateEmbeddingText(s CourseSummary) string {
	parts := []string{
		s.CourseCode + ": " + s.Title,
		"Department: " + s.Department,
		"Difficulty: " + string(s.DifficultyLevel),
		s.ShortDescription,
	}
	if len(s.Tags) > 0 {
		parts = append(parts, "Tags: "+strings.Join(s.Tags, ", "))
	}
	return strings.Join(parts, embeddingTextSeparator)
}

// EmbeddingTextValid reports whether EmbeddingText is empty or regenerates
// byte-for-byte from the other fields.
func (s *CourseSummary) EmbeddingTextValid() bool {
	return s.EmbeddingText == "" || s.EmbeddingText == GenerateEmbeddingText(*s)
}

// firstSentences keeps the first n sentences of text, splitting on ". ".
// The result always ends with a period unless text is blank.
func firstSentences(text string, n int) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	sentences := strings.Split(text, ". ")
	if len(sentences) > n {
		sentences = sentences[:n]
	}
	short := strings.Join(sentences, ". ")
	if !strings.HasSuffix(short, ".") {
		short += "."
	}
	return short
}
