package entities

// SourceNode is one retrieved chunk that contributed to an answer.
type SourceNode struct {
	Text     string            `json:"text"`
	Score    float32           `json:"score"`
	Metadata map[string]string `json:"metadata"`
}

// Answer is the result of a RAG query against a collection.
type Answer struct {
	Question    string       `json:"question"`
	Answer      string       `json:"answer"`
	SourceFiles []string     `json:"source_files"`
	SourceNodes []SourceNode `json:"source_nodes"`
}
