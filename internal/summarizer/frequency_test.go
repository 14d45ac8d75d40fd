package summarizer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarizePicksFrequentTopicSentences(t *testing.T) {
	text := "Vector search powers modern retrieval systems. " +
		"Vector search relies on embedding models to compare documents. " +
		"My cat slept all afternoon. " +
		"Embedding models place similar vector representations close together. " +
		"The weather was unremarkable yesterday."

	s := NewFrequencySummarizer()
	digest, err := s.Summarize(text, 2)
	require.NoError(t, err)

	sentences := strings.Count(digest, ".")
	assert.Equal(t, 2, sentences)
	assert.Contains(t, digest, "Vector search")
	assert.NotContains(t, digest, "cat slept")
	assert.NotContains(t, digest, "weather")
}

func TestSummarizeKeepsOriginalOrder(t *testing.T) {
	text := "Embeddings map text to vectors. Filler sentence about nothing relevant here. Embeddings enable vector similarity search across text."
	s := NewFrequencySummarizer()
	digest, err := s.Summarize(text, 2)
	require.NoError(t, err)
	first := strings.Index(digest, "map text to vectors")
	second := strings.Index(digest, "similarity search")
	require.GreaterOrEqual(t, first, 0)
	require.Greater(t, second, first, "selected sentences must stay in source order")
}

func TestSummarizeNoSentencePunctuation(t *testing.T) {
	s := NewFrequencySummarizer()
	digest, err := s.Summarize("  fragment without terminal punctuation  ", 3)
	require.NoError(t, err)
	assert.Equal(t, "fragment without terminal punctuation", digest)
}

func TestSummarizeFewerSentencesThanRequested(t *testing.T) {
	s := NewFrequencySummarizer()
	digest, err := s.Summarize("Only one sentence here.", 5)
	require.NoError(t, err)
	assert.Equal(t, "Only one sentence here.", digest)
}

func TestSummarizeChinese(t *testing.T) {
	text := "向量检索支撑现代搜索系统。今天下午猫一直在睡觉。向量检索依赖嵌入模型比较文档。"
	s := NewFrequencySummarizer()
	digest, err := s.Summarize(text, 2)
	require.NoError(t, err)
	assert.Contains(t, digest, "向量检索")
	assert.NotContains(t, digest, "猫")
}
