package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"gitlab.com/dirk.krummacker/persons-service/pkg/model"
)

// Measures the average duration of POST, PUT, GET and DELETE requests in microseconds for growing
// numbers of persons. Every person gets its own email, so the runs do not collide with each other
// or with existing data.
//
// Usage example on the command line:
// > go run main.go -url=http://localhost:5000
func main() {
	baseURL := flag.String("url", "http://localhost:5000", "the base URL of the persons service")
	flag.Parse()

	runID := time.Now().UnixNano()
	fmt.Println()
	fmt.Println("  Elements      POST       PUT       GET    DELETE ")
	fmt.Println("---------------------------------------------------")
	sizes := []int{100, 500, 1000, 5000, 10000}
	for _, loops := range sizes {
		fmt.Printf("%10d", loops)
		ids := make([]int64, 0, loops)
		{
			// POST requests
			var duration int64
			for i := 0; i < loops; i++ {
				body := personBody("Marcus Antonius", fmt.Sprintf("marcus-%d-%d-%d@example.com", runID, loops, i))
				id, d := sendPostRequest(*baseURL, body)
				ids = append(ids, id)
				duration += d
			}
			fmt.Printf("%10d", duration/int64(loops*1000))
		}
		{
			// PUT requests
			f := func(id int64) int64 {
				body := personBody("Gaius Octavius", fmt.Sprintf("octavius-%d-%d@example.com", runID, id))
				return sendRequestWithID(*baseURL, id, http.MethodPut, bytes.NewReader(body))
			}
			callInLoop(ids, f)
		}
		{
			// GET requests
			f := func(id int64) int64 {
				return sendRequestWithID(*baseURL, id, http.MethodGet, nil)
			}
			callInLoop(ids, f)
		}
		{
			// DELETE requests
			f := func(id int64) int64 {
				return sendRequestWithID(*baseURL, id, http.MethodDelete, nil)
			}
			callInLoop(ids, f)
		}
		fmt.Println()
	}
}

func personBody(name string, email string) []byte {
	age := int64(53)
	body, err := json.Marshal(model.PersonRequest{Name: &name, Email: &email, Phone: model.SomeString("+39 999 777 555"), Age: &age})
	if err != nil {
		log.Fatal().Err(err).Msg("could not marshal JSON")
	}
	return body
}

// callInLoop calls f once for every id, in random order, and prints the average duration.
func callInLoop(ids []int64, f func(id int64) int64) {
	shuffled := make([]int64, len(ids))
	copy(shuffled, ids)
	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	var duration int64
	for _, id := range shuffled {
		duration += f(id)
	}
	fmt.Printf("%10d", duration/int64(len(ids)*1000))
}

func sendPostRequest(baseURL string, body []byte) (int64, int64) {
	resBody, duration := sendRequest(http.MethodPost, baseURL+"/api/persons", bytes.NewReader(body))
	var created model.Created
	if err := json.Unmarshal(resBody, &created); err != nil || created.Id == 0 {
		log.Fatal().Err(err).Bytes("response", resBody).Msg("could not create person")
	}
	return created.Id, duration
}

func sendRequestWithID(baseURL string, id int64, method string, bodyReader io.Reader) int64 {
	requestURL := fmt.Sprintf("%s/api/persons/%d", baseURL, id)
	_, duration := sendRequest(method, requestURL, bodyReader)
	return duration
}

func sendRequest(method string, requestURL string, bodyReader io.Reader) ([]byte, int64) {
	req, err := http.NewRequest(method, requestURL, bodyReader)
	if err != nil {
		log.Fatal().Err(err).Msg("could not create request")
	}
	req.Header.Set("Content-Type", "application/json")
	before := time.Now().UnixNano()
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		log.Fatal().Err(err).Msg("error making http request")
	}
	defer res.Body.Close()
	resBody, err := io.ReadAll(res.Body)
	if err != nil {
		log.Fatal().Err(err).Msg("could not read response body")
	}
	after := time.Now().UnixNano()
	return resBody, after - before
}
