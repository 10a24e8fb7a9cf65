package directory

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseListingExtractsCandidates(t *testing.T) {
	html := listingHTML(
		listingRow("すし匠", "https://tabelog.example/rst/1", "3.92"),
		listingRow("回転寿司 ともえ", "https://tabelog.example/rst/2", ""),
	)
	cands, err := parseListing(html)
	assert.NoError(t, err)
	assert.Len(t, cands, 2)
	assert.Equal(t, "すし匠", cands[0].Name)
	assert.NotNil(t, cands[0].Rating)
	assert.InDelta(t, 3.92, *cands[0].Rating, 1e-9)
	assert.Nil(t, cands[1].Rating)
}

func TestParseListingCapsAtTen(t *testing.T) {
	var rows []string
	for i := 0; i < 15; i++ {
		rows = append(rows, listingRow(fmt.Sprintf("店%d", i), fmt.Sprintf("https://tabelog.example/rst/%d", i), ""))
	}
	cands, err := parseListing(listingHTML(rows...))
	assert.NoError(t, err)
	assert.Len(t, cands, maxListingCandidates)
}

func TestParseListingFallbackSelector(t *testing.T) {
	html := []byte(`<html><body>
		<div class="list-rst"><div class="list-rst__rst-name"><a href="/rst/1">すし匠</a></div></div>
	</body></html>`)
	cands, err := parseListing(html)
	assert.NoError(t, err)
	assert.Len(t, cands, 1)
	assert.Equal(t, "すし匠", cands[0].Name)
}

func TestParseListingEmptyPage(t *testing.T) {
	cands, err := parseListing([]byte("<html><body><p>no results</p></body></html>"))
	assert.NoError(t, err)
	assert.Empty(t, cands)
}

func TestAllSameName(t *testing.T) {
	assert.False(t, allSameName(nil))
	assert.False(t, allSameName([]Candidate{{Name: "a"}}))
	assert.True(t, allSameName([]Candidate{{Name: "a"}, {Name: "a"}}))
	assert.False(t, allSameName([]Candidate{{Name: "a"}, {Name: "b"}}))
}
