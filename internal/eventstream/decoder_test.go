package eventstream

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name       string
		stream     string
		wantChunks []string
		want       Result
	}{
		{
			name:       "content chunks followed by the done marker",
			stream:     "data: {\"content\":\"Hel\"}\n\ndata: {\"content\":\"lo\"}\n\ndata: [DONE]\n\n",
			wantChunks: []string{"Hel", "lo"},
			want:       Result{Answer: "Hello"},
		},
		{
			name:       "content wins over answer and delta on the same line",
			stream:     "data: {\"delta\":\"c\",\"answer\":\"b\",\"content\":\"a\"}\n",
			wantChunks: []string{"a"},
			want:       Result{Answer: "a"},
		},
		{
			name:       "answer wins over delta",
			stream:     "data: {\"delta\":\"c\",\"answer\":\"b\"}\n",
			wantChunks: []string{"b"},
			want:       Result{Answer: "b"},
		},
		{
			name:       "delta as string and as object",
			stream:     "data: {\"delta\":\"x\"}\ndata: {\"delta\":{\"content\":\"y\"}}\n",
			wantChunks: []string{"x", "y"},
			want:       Result{Answer: "xy"},
		},
		{
			name:       "bare JSON string",
			stream:     "data: \"plain\"\n",
			wantChunks: []string{"plain"},
			want:       Result{Answer: "plain"},
		},
		{
			name:       "non JSON payload is emitted as literal text",
			stream:     "data: not json\n",
			wantChunks: []string{"not json"},
			want:       Result{Answer: "not json"},
		},
		{
			name:       "lines without the data prefix are ignored",
			stream:     "event: message\nid: 1\n: comment\ndata: {\"content\":\"ok\"}\n",
			wantChunks: []string{"ok"},
			want:       Result{Answer: "ok"},
		},
		{
			name:       "done marker alone produces nothing",
			stream:     "data: [DONE]\n",
			wantChunks: nil,
			want:       Result{},
		},
		{
			name:       "metadata after the done marker is still read",
			stream:     "data: {\"content\":\"A\"}\ndata: [DONE]\ndata: {\"cited_chapters\":[2]}\n",
			wantChunks: []string{"A"},
			want:       Result{Answer: "A", CitedChapters: []int{2}},
		},
		{
			name:       "cited chapters are collapsed across chunks",
			stream:     "data: {\"content\":\"a\",\"cited_chapters\":[3,1]}\ndata: {\"content\":\"b\",\"cited_chapters\":[1,2,3]}\n",
			wantChunks: []string{"a", "b"},
			want:       Result{Answer: "ab", CitedChapters: []int{1, 2, 3}},
		},
		{
			name:       "cited paragraph ids keep first seen order",
			stream:     "data: {\"cited_paragraph_ids\":[\"p2\",\"p1\"]}\ndata: {\"cited_paragraph_ids\":[\"p1\",\"p3\"]}\n",
			wantChunks: nil,
			want:       Result{CitedParagraphIDs: []string{"p2", "p1", "p3"}},
		},
		{
			name:       "CRLF line endings and missing trailing newline",
			stream:     "data: {\"content\":\"a\"}\r\n\r\ndata:{\"content\":\"b\"}",
			wantChunks: []string{"a", "b"},
			want:       Result{Answer: "ab"},
		},
		{
			name:       "empty content is not emitted",
			stream:     "data: {\"content\":\"\"}\ndata: {\"content\":\"x\"}\n",
			wantChunks: []string{"x"},
			want:       Result{Answer: "x"},
		},
		{
			name:       "float chapter numbers keep the text of the line",
			stream:     "data: {\"content\":\"Hi\",\"cited_chapters\":[1.0]}\n",
			wantChunks: []string{"Hi"},
			want:       Result{Answer: "Hi", CitedChapters: []int{1}},
		},
		{
			name:       "chapters given as strings",
			stream:     "data: {\"content\":\"Hi\",\"cited_chapters\":[\"3\"]}\n",
			wantChunks: []string{"Hi"},
			want:       Result{Answer: "Hi", CitedChapters: []int{3}},
		},
		{
			name:       "numeric paragraph ids",
			stream:     "data: {\"content\":\"Hi\",\"cited_paragraph_ids\":[12,\"p3\"]}\n",
			wantChunks: []string{"Hi"},
			want:       Result{Answer: "Hi", CitedParagraphIDs: []string{"12", "p3"}},
		},
		{
			name:       "mistyped citations are skipped",
			stream:     "data: {\"content\":\"Spice \",\"cited_chapters\":\"three\",\"cited_paragraph_ids\":{\"id\":1}}\ndata: {\"content\":\"flows\",\"cited_chapters\":[2.5,true,4]}\ndata: [DONE]\n",
			wantChunks: []string{"Spice ", "flows"},
			want:       Result{Answer: "Spice flows", CitedChapters: []int{4}},
		},
		{
			name:       "null content falls through to answer",
			stream:     "data: {\"content\":null,\"answer\":\"b\"}\n",
			wantChunks: []string{"b"},
			want:       Result{Answer: "b"},
		},
		{
			name:       "non string content falls through to delta",
			stream:     "data: {\"content\":7,\"delta\":{\"content\":\"d\"}}\n",
			wantChunks: []string{"d"},
			want:       Result{Answer: "d"},
		},
		{
			name:       "JSON without text fields emits nothing",
			stream:     "data: {\"error\":\"oops\"}\ndata: 42\n",
			wantChunks: nil,
			want:       Result{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var chunks []string
			got, err := Decode(strings.NewReader(tt.stream), func(chunk string) {
				chunks = append(chunks, chunk)
			})
			require.NoError(t, err)
			assert.Equal(t, tt.wantChunks, chunks)
			assert.Equal(t, tt.want, got)
		})
	}
}

type failingReader struct {
	data io.Reader
	err  error
}

func (r *failingReader) Read(p []byte) (int, error) {
	n, err := r.data.Read(p)
	if errors.Is(err, io.EOF) {
		return n, r.err
	}
	return n, err
}

func TestDecode_StreamFailure(t *testing.T) {
	connectionReset := errors.New("connection reset by peer")
	reader := &failingReader{
		data: strings.NewReader("data: {\"content\":\"partial\"}\ndata: {\"content\":\" ans"),
		err:  connectionReset,
	}

	var chunks []string
	got, err := Decode(reader, func(chunk string) {
		chunks = append(chunks, chunk)
	})

	var streamErr *StreamError
	require.ErrorAs(t, err, &streamErr)
	assert.ErrorIs(t, err, connectionReset)
	assert.Equal(t, []string{"partial"}, chunks)
	assert.Equal(t, "partial", got.Answer)
}

func TestDecode_NilHandler(t *testing.T) {
	got, err := Decode(strings.NewReader("data: {\"answer\":\"quiet\"}\n"), nil)
	require.NoError(t, err)
	assert.Equal(t, "quiet", got.Answer)
}

func TestEncoder_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	encoder := NewEncoder(&buf)
	require.NoError(t, encoder.WriteChunk("Hel"))
	require.NoError(t, encoder.WriteChunk("lo"))
	require.NoError(t, encoder.WriteCitations([]int{4}, []string{"p9"}))
	require.NoError(t, encoder.WriteError("ignored"))
	require.NoError(t, encoder.WriteDone())

	var chunks []string
	got, err := Decode(&buf, func(chunk string) {
		chunks = append(chunks, chunk)
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Hel", "lo"}, chunks)
	assert.Equal(t, Result{
		Answer:            "Hello",
		CitedChapters:     []int{4},
		CitedParagraphIDs: []string{"p9"},
	}, got)
}

func TestChapters(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []int
	}{
		{name: "absent", raw: "", want: nil},
		{name: "null", raw: "null", want: nil},
		{name: "integers", raw: "[3,1]", want: []int{3, 1}},
		{name: "integral floats", raw: "[3.0,1e1]", want: []int{3, 10}},
		{name: "numeric strings", raw: `["2"," 5 "]`, want: []int{2, 5}},
		{name: "fractions and other types are skipped", raw: `[1.5,"x",null,{},7]`, want: []int{7}},
		{name: "not an array", raw: `"3"`, want: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Chapters([]byte(tt.raw)))
		})
	}
}

func TestParagraphIDs(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{name: "absent", raw: "", want: nil},
		{name: "strings", raw: `["p1","p2"]`, want: []string{"p1", "p2"}},
		{name: "numbers keep their JSON text", raw: `[12,3.5]`, want: []string{"12", "3.5"}},
		{name: "other types are skipped", raw: `[true,{"id":1},"p9"]`, want: []string{"p9"}},
		{name: "not an array", raw: `{"id":"p1"}`, want: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParagraphIDs([]byte(tt.raw)))
		})
	}
}
