package main

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matsen/citegraph/internal/crossref"
	"github.com/matsen/citegraph/internal/enrich"
	"github.com/matsen/citegraph/internal/reference"
	"github.com/matsen/citegraph/internal/storage"
)

func TestSelectSources(t *testing.T) {
	refs := []reference.Reference{{ID: "A"}, {ID: "B"}, {ID: "C"}}

	all, err := selectSources(refs, nil, true)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	picked, err := selectSources(refs, []string{"C", "A"}, false)
	require.NoError(t, err)
	require.Len(t, picked, 2)
	assert.Equal(t, "C", picked[0].ID)
	assert.Equal(t, "A", picked[1].ID)

	_, err = selectSources(refs, []string{"Z"}, false)
	assert.ErrorIs(t, err, storage.ErrUnknownSource)

	_, err = selectSources(refs, nil, false)
	assert.Error(t, err)

	_, err = selectSources(refs, []string{"A"}, true)
	assert.Error(t, err)
}

func TestToSources(t *testing.T) {
	refs := []reference.Reference{
		{ID: "A", DOI: "https://doi.org/10.1093/SysBio/syy032"},
		{ID: "B"},
		{ID: "C", DOI: "not a doi"},
	}

	got := toSources(refs)
	assert.Equal(t, []enrich.Source{
		{ID: "A", DOI: "10.1093/sysbio/syy032"},
		{ID: "B"},
		{ID: "C"},
	}, got)
}

func TestParseIdentifier(t *testing.T) {
	tests := []struct {
		in     string
		want   enrich.Identifier
		wantOK bool
	}{
		{"10.1038/nature12373", enrich.Identifier{Kind: enrich.KindDOI, Value: "10.1038/nature12373"}, true},
		{"doi:10.1038/Nature12373", enrich.Identifier{Kind: enrich.KindDOI, Value: "10.1038/nature12373"}, true},
		{"978-0-262-03384-8", enrich.Identifier{Kind: enrich.KindISBN, Value: "9780262033848"}, true},
		{"hello", enrich.Identifier{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := parseIdentifier(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExitCodeFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"no eligible", enrich.ErrNoEligibleSourceRecords, ExitDataError},
		{"unknown source", storage.ErrUnknownSource, ExitNotFound},
		{"provider", enrich.ErrProviderUnavailable, ExitAPIError},
		{"crossref network", fmt.Errorf("%w: 10.1/x: %w", crossref.ErrProviderUnavailable, crossref.ErrNetworkError), ExitAPIError},
		{"crossref rate limited", fmt.Errorf("%w: 10.1/x: %w", crossref.ErrProviderUnavailable, crossref.ErrRateLimited), ExitRateLimited},
		{"crossref 429", &crossref.APIError{StatusCode: 429, Message: "slow down"}, ExitRateLimited},
		{"crossref 404", &crossref.APIError{StatusCode: 404, Message: "gone"}, ExitNotFound},
		{"merge", enrich.ErrMergeFailed, ExitError},
		{"other", errors.New("boom"), ExitError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, exitCodeFor(tt.err))
		})
	}
}
