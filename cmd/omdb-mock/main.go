// omdb-mock serves a canned OMDB-compatible API for local development and
// integration testing without an API key.
package main

import (
	"encoding/json"
	"flag"
	"log"
	"net/http"
	"os"
	"strings"
)

type mockMovie struct {
	Title      string            `json:"Title"`
	Year       string            `json:"Year"`
	Rated      string            `json:"Rated,omitempty"`
	Runtime    string            `json:"Runtime,omitempty"`
	Genre      string            `json:"Genre,omitempty"`
	Director   string            `json:"Director,omitempty"`
	Actors     string            `json:"Actors,omitempty"`
	Plot       string            `json:"Plot,omitempty"`
	Poster     string            `json:"Poster,omitempty"`
	Ratings    []json.RawMessage `json:"Ratings,omitempty"`
	IMDBRating string            `json:"imdbRating,omitempty"`
	IMDBVotes  string            `json:"imdbVotes,omitempty"`
	IMDBID     string            `json:"imdbID"`
	Type       string            `json:"Type,omitempty"`
}

func main() {
	var (
		port = flag.String("port", "9099", "port to listen on")
		data = flag.String("data", "mock-omdb.json", "path to mock data file")
	)
	flag.Parse()

	file, err := os.ReadFile(*data)
	if err != nil {
		log.Fatalf("read mock data: %v", err)
	}

	var movies []mockMovie
	if err := json.Unmarshal(file, &movies); err != nil {
		log.Fatalf("parse mock data: %v", err)
	}

	byID := make(map[string]mockMovie, len(movies))
	for _, m := range movies {
		byID[m.IMDBID] = m
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		query := r.URL.Query()

		if id := query.Get("i"); id != "" {
			m, ok := byID[id]
			if !ok {
				writeFailure(w, "Incorrect IMDb ID.")
				return
			}
			respond(w, detailPayload{mockMovie: m, Response: "True"})
			return
		}

		search := strings.ToLower(query.Get("s"))
		if search == "" {
			writeFailure(w, "Incorrect IMDb ID.")
			return
		}
		var matched []mockMovie
		for _, m := range movies {
			if strings.Contains(strings.ToLower(m.Title), search) {
				matched = append(matched, m)
			}
		}
		if len(matched) == 0 {
			writeFailure(w, "Movie not found!")
			return
		}
		respond(w, searchPayload{
			Search:       matched,
			TotalResults: len(matched),
			Response:     "True",
		})
	})

	addr := ":" + *port
	log.Printf("mock omdb listening on %s with %d titles", addr, len(movies))
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

type detailPayload struct {
	mockMovie
	Response string `json:"Response"`
}

type searchPayload struct {
	Search       []mockMovie `json:"Search"`
	TotalResults int         `json:"totalResults,string"`
	Response     string      `json:"Response"`
}

func writeFailure(w http.ResponseWriter, message string) {
	respond(w, map[string]string{"Response": "False", "Error": message})
}

func respond(w http.ResponseWriter, payload interface{}) {
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
