package identifier

import (
	"reflect"
	"testing"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []Identifier
	}{
		{
			name: "bare doi",
			text: "10.1103/PhysRevLett.116.061102",
			want: []Identifier{{KindDOI, "10.1103/PhysRevLett.116.061102"}},
		},
		{
			name: "doi url",
			text: "see https://doi.org/10.22331/q-2021-04-26-438 for details",
			want: []Identifier{{KindDOI, "10.22331/q-2021-04-26-438"}},
		},
		{
			name: "arxiv pdf url",
			text: "https://arxiv.org/pdf/1803.07119.pdf",
			want: []Identifier{{KindArXiv, "1803.07119"}},
		},
		{
			name: "arxiv abs url",
			text: "https://arxiv.org/abs/2106.15928v2",
			want: []Identifier{{KindArXiv, "2106.15928"}},
		},
		{
			name: "arxiv label",
			text: "the preprint arXiv:2106.15928 shows",
			want: []Identifier{{KindArXiv, "2106.15928"}},
		},
		{
			name: "old style arxiv",
			text: "quant-ph/0410100v1 is a classic",
			want: []Identifier{{KindArXiv, "quant-ph/0410100"}},
		},
		{
			name: "arxiv id inside a doi stays a doi",
			text: "10.48550/arXiv.2106.15928",
			want: []Identifier{{KindDOI, "10.48550/arXiv.2106.15928"}},
		},
		{
			name: "mixed kinds keep text order",
			text: "first 1803.07119 then 10.1000/xyz123 done",
			want: []Identifier{
				{KindArXiv, "1803.07119"},
				{KindDOI, "10.1000/xyz123"},
			},
		},
		{
			name: "duplicate spellings dedupe",
			text: "1803.07119 also cited as arXiv:1803.07119v2",
			want: []Identifier{{KindArXiv, "1803.07119"}},
		},
		{
			name: "trailing punctuation trimmed",
			text: "(see 10.1000/xyz123).",
			want: []Identifier{{KindDOI, "10.1000/xyz123"}},
		},
		{
			name: "dotted number is not an arxiv id",
			text: "section 2.1803.07119 of the appendix",
			want: nil,
		},
		{
			name: "no identifiers",
			text: "nothing to see here",
			want: nil,
		},
		{
			name: "empty input",
			text: "",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Extract(tt.text)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Extract(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestExtractKind(t *testing.T) {
	text := "1803.07119 and 10.1000/xyz123 and quant-ph/0410100"

	dois := ExtractKind(text, KindDOI)
	if len(dois) != 1 || dois[0].Value != "10.1000/xyz123" {
		t.Errorf("ExtractKind doi = %v, want one 10.1000/xyz123", dois)
	}

	arxivs := ExtractKind(text, KindArXiv)
	if len(arxivs) != 2 || arxivs[0].Value != "1803.07119" || arxivs[1].Value != "quant-ph/0410100" {
		t.Errorf("ExtractKind arxiv = %v", arxivs)
	}
}
