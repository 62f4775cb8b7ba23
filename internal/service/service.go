package service

import (
	"context"
	_ "embed"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"gitlab.com/dirk.krummacker/persons-service/internal/model"
	api "gitlab.com/dirk.krummacker/persons-service/pkg/model"
)

// indexPage is the static page served at the root URL.
//
//go:embed web/index.html
var indexPage []byte

// PersonStore is the persistence used by the handlers. *store.PersonStore implements it.
type PersonStore interface {
	Create(ctx context.Context, in model.PersonInput) (int64, error)
	List(ctx context.Context) ([]model.Person, error)
	Get(ctx context.Context, id int64) (model.Person, error)
	Update(ctx context.Context, id int64, in model.PersonInput) error
	Delete(ctx context.Context, id int64) error
	Ping(ctx context.Context) error
}

// Service holds the dependencies of the HTTP handlers.
type Service struct {
	persons        PersonStore
	requestLogging bool
}

// New creates the service. If requestLogging is false, no line is logged per HTTP request.
func New(persons PersonStore, requestLogging bool) *Service {
	return &Service{persons: persons, requestLogging: requestLogging}
}

// Router initializes the REST API router and registers all endpoints.
func (s *Service) Router() *gin.Engine {
	router := gin.New()
	if s.requestLogging {
		router.Use(requestLogger())
	} else {
		log.Info().Msg("Turning off HTTP request logging.")
	}
	router.Use(gin.CustomRecovery(recoverWithJSON))
	router.GET("/", s.index)
	router.GET("/health", s.health)
	router.GET("/ready", s.ready)
	router.POST("/api/persons", s.createPerson)
	router.GET("/api/persons", s.findAllPersons)
	router.GET("/api/persons/:id", s.findPersonByID)
	router.PUT("/api/persons/:id", s.updatePersonByID)
	router.DELETE("/api/persons/:id", s.deletePersonByID)
	return router
}

// index responds with the static HTML page.
func (s *Service) index(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", indexPage)
}

// health responds with a fixed status. It does not look at the database and is meant as a
// liveness probe.
//
// Example REST API call:
//
//	> curl http://localhost:5000/health
func (s *Service) health(c *gin.Context) {
	c.IndentedJSON(http.StatusOK, api.Status{Status: "healthy", Message: "Application is running"})
}

// ready pings the database and responds with SERVICE UNAVAILABLE if it cannot be reached.
//
// Example REST API call:
//
//	> curl http://localhost:5000/ready
func (s *Service) ready(c *gin.Context) {
	if err := s.persons.Ping(c.Request.Context()); err != nil {
		log.Warn().Err(err).Msg("readiness check failed")
		c.IndentedJSON(http.StatusServiceUnavailable, api.ErrorBody{Error: err.Error()})
		return
	}
	c.IndentedJSON(http.StatusOK, api.Status{Status: "ready", Message: "Database is reachable"})
}

// createPerson inserts the person specified in the request's JSON into the database. It responds
// with the newly assigned id. Name and email are required; phone and address are stored as empty
// strings and age as NULL if they are not specified. An explicit null is stored as NULL.
//
// Example REST API call:
//
//	> curl http://localhost:5000/api/persons --request "POST" --include --header "Content-Type: application/json" --data '{"name": "Erika Mustermann", "email": "erika@example.com", "phone": "+49 0815 4711", "age": 55}'
func (s *Service) createPerson(c *gin.Context) {
	var submitted api.PersonRequest
	if err := c.ShouldBindJSON(&submitted); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, api.ErrorBody{Error: "invalid JSON"})
		return
	}
	if err := validateRequired(submitted); err != nil {
		respondWithError(c, err)
		return
	}
	id, err := s.persons.Create(c.Request.Context(), toInput(submitted))
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.IndentedJSON(http.StatusCreated, api.Created{Message: "Person created successfully", Id: id})
}

// findAllPersons responds with the list of all persons as JSON, the most recently created first.
// An empty database yields an empty list.
//
// Example REST API call:
//
//	> curl http://localhost:5000/api/persons
func (s *Service) findAllPersons(c *gin.Context) {
	persons, err := s.persons.List(c.Request.Context())
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.IndentedJSON(http.StatusOK, persons)
}

// findPersonByID locates the person whose ID value matches the id parameter of the request URL,
// then returns that person as a response.
//
// Example REST API call:
//
//	> curl http://localhost:5000/api/persons/56
func (s *Service) findPersonByID(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	person, err := s.persons.Get(c.Request.Context(), id)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.IndentedJSON(http.StatusOK, person)
}

// updatePersonByID replaces the person whose ID value matches the id parameter of the request URL
// with the values in the JSON. Values that are not specified are not kept: phone and address
// become empty strings and age becomes NULL. An explicit null is stored as NULL.
//
// Example REST API call:
//
//	> curl http://localhost:5000/api/persons/56 --request "PUT" --include --header "Content-Type: application/json" --data '{"name": "Rudi Völler", "email": "rudi@example.com", "phone": "81970"}'
func (s *Service) updatePersonByID(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var submitted api.PersonRequest
	if err := c.ShouldBindJSON(&submitted); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, api.ErrorBody{Error: "invalid JSON"})
		return
	}
	if err := s.persons.Update(c.Request.Context(), id, toInput(submitted)); err != nil {
		respondWithError(c, err)
		return
	}
	c.IndentedJSON(http.StatusOK, api.Message{Message: "Person updated successfully"})
}

// deletePersonByID deletes the person whose ID value matches the id parameter of the request URL
// from the database.
//
// Example REST API call:
//
//	> curl http://localhost:5000/api/persons/56 --request "DELETE"
func (s *Service) deletePersonByID(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := s.persons.Delete(c.Request.Context(), id); err != nil {
		respondWithError(c, err)
		return
	}
	c.IndentedJSON(http.StatusOK, api.Message{Message: "Person deleted successfully"})
}

// parseID reads the id parameter of the request URL. Ids that are not integers cannot match any
// person, so the request is answered with NOT FOUND without asking the database.
func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusNotFound, api.ErrorBody{Error: "invalid id parameter"})
		return 0, false
	}
	return id, true
}

// validateRequired checks that name and email are present and not empty.
func validateRequired(submitted api.PersonRequest) error {
	if submitted.Name == nil || *submitted.Name == "" {
		return &ValidationError{Field: "name"}
	}
	if submitted.Email == nil || *submitted.Email == "" {
		return &ValidationError{Field: "email"}
	}
	return nil
}

// toInput maps a request onto the values written to the database.
func toInput(submitted api.PersonRequest) model.PersonInput {
	return model.PersonInput{
		Name:    submitted.Name,
		Email:   submitted.Email,
		Phone:   submitted.Phone.Or(""),
		Address: submitted.Address.Or(""),
		Age:     submitted.Age,
	}
}

// recoverWithJSON answers a request whose handler panicked with INTERNAL SERVER ERROR.
func recoverWithJSON(c *gin.Context, recovered any) {
	log.Error().Interface("panic", recovered).Str("path", c.Request.URL.Path).Msg("handler panicked")
	c.AbortWithStatusJSON(http.StatusInternalServerError, api.ErrorBody{Error: fmt.Sprint(recovered)})
}
