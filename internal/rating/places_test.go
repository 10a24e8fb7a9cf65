package rating

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPlacesServer(t *testing.T, handler http.HandlerFunc) *PlacesClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewPlacesClient("test-key", srv.URL, zerolog.Nop())
}

func TestTextSearchFiltersNonEateries(t *testing.T) {
	client := newPlacesServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/textsearch/json", r.URL.Path)
		assert.Equal(t, "ramen shinjuku", r.URL.Query().Get("query"))
		fmt.Fprint(w, `{"results":[
			{"place_id":"a","name":"Ichiran","rating":4.1,"user_ratings_total":5000,"price_level":2,"types":["restaurant","food"]},
			{"place_id":"b","name":"Shinjuku Station","rating":4.0,"user_ratings_total":9000,"types":["train_station"]},
			{"place_id":"c","name":"Fuunji","rating":4.4,"user_ratings_total":3000,"price_level":1,"types":["food"]}
		]}`)
	})

	places, err := client.TextSearch(context.Background(), "ramen shinjuku", "", 0)
	require.NoError(t, err)
	require.Len(t, places, 2)
	assert.Equal(t, "Ichiran", places[0].Name)
	assert.Equal(t, "Fuunji", places[1].Name)
}

func TestTextSearchEnrichesMissingFields(t *testing.T) {
	client := newPlacesServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/textsearch/json":
			fmt.Fprint(w, `{"results":[
				{"place_id":"a","name":"Ichiran","rating":4.1,"user_ratings_total":5000,"types":["restaurant"]}
			]}`)
		case "/details/json":
			assert.Equal(t, "a", r.URL.Query().Get("place_id"))
			assert.Contains(t, r.URL.Query().Get("fields"), "price_level")
			fmt.Fprint(w, `{"result":{"price_level":2,"url":"https://maps.example/a"}}`)
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	})

	places, err := client.TextSearch(context.Background(), "ichiran", "35.69,139.70", 1500)
	require.NoError(t, err)
	require.Len(t, places, 1)
	require.NotNil(t, places[0].PriceLevel)
	assert.Equal(t, 2, *places[0].PriceLevel)
	assert.Equal(t, "https://maps.example/a", places[0].PlaceURL)
}

func TestTextSearchEnrichmentFailureSkipsPlace(t *testing.T) {
	client := newPlacesServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/textsearch/json":
			fmt.Fprint(w, `{"results":[
				{"place_id":"a","name":"Ichiran","rating":4.1,"types":["restaurant"]},
				{"place_id":"b","name":"Fuunji","rating":4.4,"user_ratings_total":3000,"price_level":1,"types":["restaurant"]}
			]}`)
		case "/details/json":
			http.Error(w, "quota exceeded", http.StatusForbidden)
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	})

	places, err := client.TextSearch(context.Background(), "ramen", "", 0)
	require.NoError(t, err)
	require.Len(t, places, 2)
	// first place stays, just without the enriched fields
	assert.Equal(t, "Ichiran", places[0].Name)
	assert.Nil(t, places[0].ReviewsCount)
	require.NotNil(t, places[1].ReviewsCount)
	assert.Equal(t, 3000, *places[1].ReviewsCount)
}

func TestTextSearchServerError(t *testing.T) {
	client := newPlacesServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	})

	_, err := client.TextSearch(context.Background(), "ramen", "", 0)
	require.Error(t, err)
}
