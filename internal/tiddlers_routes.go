package internal

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"wiki_server/pkg/dispatcher"
	"wiki_server/pkg/duration"
	"wiki_server/pkg/wiki"
)

// serveRoot :
// Serves the root tiddler of the wiki. The rendering itself
// is the store's business: this handler only fetches the
// text of the configured root tiddler and sends it with the
// configured serve type.
func serveRoot(w http.ResponseWriter, r *http.Request, state *dispatcher.State) {
	text := state.Wiki.GetTiddlerText(state.Variables.Get("root-tiddler"), "")

	state.SendResponse(http.StatusOK, map[string]string{
		"Content-Type": state.Variables.Get("root-serve-type"),
	}, []byte(text), "")
}

// statusPayload :
// The body of the status route, describing who the client is
// to the server and how long the process has been up.
type statusPayload struct {
	Username  string            `json:"username"`
	Anonymous bool              `json:"anonymous"`
	ReadOnly  bool              `json:"read_only"`
	Uptime    duration.Duration `json:"uptime"`
	Space     map[string]string `json:"space"`
}

// serveStatus :
// Reports the identity derived for this request along with
// some liveness information about the process.
func serveStatus(w http.ResponseWriter, r *http.Request, state *dispatcher.State) {
	payload := statusPayload{
		Username:  state.AuthenticatedUsername,
		Anonymous: len(state.AuthenticatedUsername) == 0,
		ReadOnly:  state.ReadOnly,
		Uptime:    duration.NewDuration(time.Since(state.Boot.StartupTime).Round(time.Second)),
		Space: map[string]string{
			"recipe": "default",
		},
	}

	data, err := json.Marshal(payload)
	if err != nil {
		http.Error(w, "Could not marshal status", http.StatusInternalServerError)
		return
	}

	state.SendResponse(http.StatusOK, map[string]string{
		"Content-Type": "application/json",
	}, data, "")
}

// listTiddlers :
// Serves the whole content of the store as a JSON array of
// tiddlers.
func listTiddlers(w http.ResponseWriter, r *http.Request, state *dispatcher.State) {
	titles, err := state.Wiki.AllTitles()
	if err != nil {
		http.Error(w, "Could not list tiddlers", http.StatusInternalServerError)
		return
	}

	tiddlers := make([]wiki.Tiddler, 0, len(titles))
	for _, title := range titles {
		t, err := state.Wiki.GetTiddler(title)
		if err != nil {
			// The tiddler vanished between the listing and the
			// fetch, skip it.
			continue
		}

		tiddlers = append(tiddlers, t)
	}

	data, err := json.Marshal(tiddlers)
	if err != nil {
		http.Error(w, "Could not marshal tiddlers", http.StatusInternalServerError)
		return
	}

	state.SendResponse(http.StatusOK, map[string]string{
		"Content-Type": "application/json",
	}, data, "")
}

// serveTiddler :
// Serves a single tiddler identified by the route capture as
// JSON, or a 404 if the store does not know it.
func serveTiddler(w http.ResponseWriter, r *http.Request, state *dispatcher.State) {
	title := state.Params[0]

	t, err := state.Wiki.GetTiddler(title)
	if errors.Is(err, wiki.ErrUnknownTiddler) {
		http.Error(w, "Tiddler not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "Could not fetch tiddler", http.StatusInternalServerError)
		return
	}

	data, err := json.Marshal(t)
	if err != nil {
		http.Error(w, "Could not marshal tiddler", http.StatusInternalServerError)
		return
	}

	state.SendResponse(http.StatusOK, map[string]string{
		"Content-Type": "application/json",
	}, data, "")
}

// saveTiddler :
// Creates or replaces the tiddler identified by the route
// capture from the JSON body of the request. The title in
// the path wins over any title carried in the body.
func saveTiddler(w http.ResponseWriter, r *http.Request, state *dispatcher.State) {
	title := state.Params[0]

	var t wiki.Tiddler
	if err := json.Unmarshal(state.Data, &t); err != nil {
		http.Error(w, "Invalid tiddler payload", http.StatusBadRequest)
		return
	}
	t.Title = title
	if t.Fields == nil {
		t.Fields = map[string]string{}
	}

	if err := state.Wiki.SetTiddler(t); err != nil {
		http.Error(w, "Could not save tiddler", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// removeTiddler :
// Deletes the tiddler identified by the route capture.
func removeTiddler(w http.ResponseWriter, r *http.Request, state *dispatcher.State) {
	title := state.Params[0]

	err := state.Wiki.DeleteTiddler(title)
	if errors.Is(err, wiki.ErrUnknownTiddler) {
		http.Error(w, "Tiddler not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "Could not delete tiddler", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
