package httpapi

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"swipe-quiz/internal/quiz"
)

func (a *API) HandleHealth(c *gin.Context) {
	writeJSON(c, http.StatusOK, healthResponse{Status: "ok"})
}

func (a *API) HandleDeck(c *gin.Context) {
	deck := a.service.Deck()
	writeJSON(c, http.StatusOK, deckResponse{
		Name:     deck.Name,
		Title:    deck.Title,
		Profiles: deck.Profiles(),
		Prompts:  deck.Prompts(),
	})
}

func (a *API) HandleProfile(c *gin.Context) {
	label := quiz.Label(strings.TrimSpace(c.Param("label")))
	profile, ok := a.service.Profile(label)
	if !ok {
		writeJSON(c, http.StatusNotFound, errorResponse{Error: "profile not found"})
		return
	}
	writeJSON(c, http.StatusOK, profile)
}

// HandleStartSession takes the contact form. The quiz cannot start until
// every field is valid.
func (a *API) HandleStartSession(c *gin.Context) {
	var request startSessionRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		writeJSON(c, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}

	view, err := a.service.StartSession(c.Request.Context(), quiz.Contact{
		FirstName:   request.FirstName,
		LastName:    request.LastName,
		Email:       request.Email,
		PhoneNumber: request.PhoneNumber,
		CompanyName: request.CompanyName,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.Header("Location", "/sessions/"+view.SessionID)
	writeJSON(c, http.StatusCreated, toSessionResponse(view))
}

func (a *API) HandleGetSession(c *gin.Context) {
	view, err := a.service.GetSession(c.Request.Context(), sessionID(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, toSessionResponse(view))
}

func (a *API) HandleDecision(c *gin.Context) {
	var request decisionRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		writeJSON(c, http.StatusBadRequest, errorResponse{Error: "prompt_id and accepted are required"})
		return
	}

	view, err := a.service.Decide(c.Request.Context(), sessionID(c), *request.PromptID, *request.Accepted)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	writeJSON(c, http.StatusOK, decisionResponse{
		SessionID: view.SessionID,
		Progress:  view.Progress,
		Match:     *request.Accepted,
	})
}

func (a *API) HandleReset(c *gin.Context) {
	view, err := a.service.ResetSession(c.Request.Context(), sessionID(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, toSessionResponse(view))
}

func (a *API) HandleResult(c *gin.Context) {
	id := sessionID(c)
	outcome, err := a.service.Result(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	writeJSON(c, http.StatusOK, resultResponse{
		SessionID: id,
		Winner:    outcome.Winner,
		Profile:   outcome.Profile,
		Scores:    outcome.Scores,
		Ranked:    outcome.Ranked,
	})
}
