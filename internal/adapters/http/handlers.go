package web

import (
	"bytes"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
	"path/filepath"
	"strconv"

	"github.com/gorilla/csrf"
	"github.com/yuin/goldmark"

	"planning/internal/adapters/http/middleware"
	"planning/internal/application/orchestrators"
	"planning/internal/application/projections"
	"planning/internal/connection"
	choiceDomain "planning/internal/domain/choice"
	"planning/internal/domain/role"
)

// Status messages surfaced inline on the pages.
const (
	msgConfigureConnection = "Veuillez configurer la connexion à Supabase."
	msgFetchChoicesFailed  = "Impossible de récupérer les données depuis Supabase."
	msgNoChoices           = "Aucun choix enregistré pour le moment."
	msgFetchRequestsFailed = "Impossible de récupérer les demandes."
	msgNoRequests          = "Aucune demande à afficher."
	msgUpdateFailed        = "Impossible de mettre à jour le statut."
)

// mdRenderer is a goldmark instance for the connection page help blurb.
// Raw HTML in markdown input is escaped (WithUnsafe is NOT set).
var mdRenderer = goldmark.New()

// connectionHelp is shown beside the connection form.
const connectionHelp = `L'URL du projet et la **clé API anonyme** se trouvent dans les
réglages Supabase du projet (*Settings → API*). La clé est enregistrée
localement sur le serveur et peut être effacée à tout moment avec le bouton
de déconnexion.`

// internalError logs the real error and returns a generic message to the client.
func internalError(w http.ResponseWriter, err error) {
	slog.Error("internal_error", "error", err.Error())
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

// templatesDir is resolved relative to the process working directory.
// Package tests point it at the in-tree templates.
var templatesDir = "internal/adapters/http/templates"

func renderTemplate(w http.ResponseWriter, r *http.Request, templateName string, data any) {
	sess, ok := middleware.GetSessionFromContext(r.Context())
	trigram := ""
	currentRole := ""
	if ok {
		trigram = sess.Trigram
		currentRole = sess.NormalizedRole
	}

	funcMap := template.FuncMap{
		"currentTrigram": func() string { return trigram },
		"currentRole":    func() string { return currentRole },
		"isLoggedIn":     func() bool { return trigram != "" },
		"isAdmin":        func() bool { return currentRole == role.Admin },
		"csrfToken":      func() string { return csrf.Token(r) },
		"add":            func(a, b int) int { return a + b },
		"renderMarkdown": func(md string) template.HTML {
			var buf bytes.Buffer
			if err := mdRenderer.Convert([]byte(md), &buf); err != nil {
				return template.HTML(template.HTMLEscapeString(md))
			}
			return template.HTML(buf.String())
		},
	}

	layoutPath := filepath.Join(templatesDir, "layout.html")
	pagePath := filepath.Join(templatesDir, templateName)
	tpl, err := template.New("layout.html").Funcs(funcMap).ParseFiles(layoutPath, pagePath)
	if err != nil {
		http.Error(w, "Template error: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tpl.Execute(w, data); err != nil {
		http.Error(w, "Render error: "+err.Error(), http.StatusInternalServerError)
		return
	}
}

func registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/", handleLanding)
	mux.HandleFunc("/logout", handleLogout)
	mux.Handle("/planning", middleware.RequireSession("/")(http.HandlerFunc(handlePlanning)))
	mux.Handle("/requests", middleware.RequireRole(role.Admin, "/")(http.HandlerFunc(handleRequests)))
	mux.Handle("/requests/status", middleware.RequireRole(role.Admin, "/")(http.HandlerFunc(handleRequestStatus)))
	mux.HandleFunc("/connection", handleConnection)
	mux.HandleFunc("/connection/disconnect", handleDisconnect)
}

// handleLanding handles GET (sign-in form) and POST (sign-in) for /
func handleLanding(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	if r.Method == "GET" {
		// If already signed in, land on the role's home page
		if sess, ok := middleware.GetSessionFromContext(r.Context()); ok {
			http.Redirect(w, r, homeFor(sess), http.StatusSeeOther)
			return
		}
		renderTemplate(w, r, "index.html", map[string]any{})
		return
	}

	if r.Method == "POST" {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form submission", http.StatusBadRequest)
			return
		}

		result, err := orchestrators.ExecuteSignIn(r.Context(), orchestrators.SignInInput{
			Trigram: r.FormValue("trigram"),
			Role:    r.FormValue("role"),
		})
		if err != nil {
			renderTemplate(w, r, "index.html", map[string]any{"Error": err.Error()})
			return
		}

		token, err := sessions.Create(result.Trigram, result.Role)
		if err != nil {
			internalError(w, err)
			return
		}
		middleware.SetSessionCookie(w, token)

		home := "/planning"
		if result.NormalizedRole == role.Admin {
			home = "/requests"
		}
		http.Redirect(w, r, home, http.StatusSeeOther)
		return
	}

	w.WriteHeader(http.StatusMethodNotAllowed)
}

func homeFor(sess middleware.Session) string {
	if sess.NormalizedRole == role.Admin {
		return "/requests"
	}
	return "/planning"
}

// handleLogout handles POST /logout
func handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if token := middleware.SessionToken(r); token != "" {
		sessions.Delete(token)
	}
	middleware.ClearSessionCookie(w)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// choiceView is the rendered shape of one planning choice.
type choiceView struct {
	ID          string
	Date        string
	Label       string
	ColumnNum   int
	SlotCode    string
	DayLabel    string
	Owner       string
	UserType    string
	Quality     string
	Nature      string
	Etat        string
	Priority    int // 1-based rank within its guard-nature group
	ChoiceOrder string
	CreatedAt   string
}

func toChoiceView(c choiceDomain.PlanningChoice) choiceView {
	label := c.ColumnLabel
	if label == "" {
		label = "Créneau"
	}
	return choiceView{
		ID:          c.ID,
		Date:        choiceDomain.FormatDay(c.Day),
		Label:       label,
		ColumnNum:   c.ColumnNumber,
		SlotCode:    dash(c.SlotTypeCode),
		DayLabel:    dash(c.PlanningDayLabel),
		Owner:       dash(c.Trigram),
		UserType:    dash(c.UserType),
		Quality:     c.QualityLabel(),
		Nature:      c.Nature(),
		Etat:        c.Status(),
		ChoiceOrder: strconv.Itoa(c.ChoiceOrder + 1),
		CreatedAt:   choiceDomain.FormatCreatedAt(c.CreatedAt),
	}
}

func dash(s string) string {
	if s == "" {
		return "—"
	}
	return s
}

func rankedViews(ranked []projections.RankedChoice) []choiceView {
	views := make([]choiceView, 0, len(ranked))
	for _, rc := range ranked {
		v := toChoiceView(rc.PlanningChoice)
		v.Priority = rc.Rank
		views = append(views, v)
	}
	return views
}

// handlePlanning handles GET /planning, the choice board screen.
// The primary action is a refresh affordance: re-requesting the page reloads
// everything from the backend.
func handlePlanning(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	sess, _ := middleware.GetSessionFromContext(r.Context())

	// Three ordered wizard steps; out-of-range values clamp to the ends.
	step, err := strconv.Atoi(r.URL.Query().Get("step"))
	if err != nil {
		step = 1
	}
	if step < 1 {
		step = 1
	}
	if step > 3 {
		step = 3
	}

	data := map[string]any{
		"Step":  step,
		"Steps": []int{1, 2, 3},
	}

	client := services.Connection.Ready(r.Context())
	if client == nil {
		data["Feedback"] = msgConfigureConnection
		data["Unconfigured"] = true
		renderTemplate(w, r, "planning.html", data)
		return
	}

	result, err := projections.QueryGetChoiceBoard(r.Context(), projections.GetChoiceBoardQuery{
		Trigram:  sess.Trigram,
		UserType: sess.NormalizedRole,
	}, projections.GetChoiceBoardDeps{ChoiceStore: client})
	if err != nil {
		slog.Error("choice_board_fetch_failed", "trigram", sess.Trigram, "error", err)
		data["Feedback"] = msgFetchChoicesFailed
		renderTemplate(w, r, "planning.html", data)
		return
	}

	if len(result.Choices) == 0 {
		data["Feedback"] = msgNoChoices
	} else {
		data["Feedback"] = fmt.Sprintf("%d choix récupérés.", len(result.Choices))
	}

	board := make([]choiceView, 0, len(result.Choices))
	for _, c := range result.Choices {
		board = append(board, toChoiceView(c))
	}
	data["Loaded"] = true
	data["Board"] = board
	data["Normales"] = rankedViews(result.Normales)
	data["Bonnes"] = rankedViews(result.Bonnes)

	renderTemplate(w, r, "planning.html", data)
}

func parseRequestFilters(values url.Values) projections.RequestFilters {
	return projections.RequestFilters{
		UserType:     values.Get("user_type"),
		Status:       values.Get("etat"),
		FormStatus:   values.Get("status"),
		Date:         values.Get("date"),
		ActivityType: values.Get("type"),
		Doctor:       values.Get("doctor"),
		Column:       values.Get("column"),
	}
}

// handleRequests handles GET /requests, the moderation console.
// Facet and filter changes arrive as query parameters; only status mutations
// and the page load itself hit the backend.
func handleRequests(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	filters := parseRequestFilters(r.URL.Query())

	// The query echoed into row actions and page links must not carry the
	// one-shot err flag, or a later success would still show the failure.
	backQuery := r.URL.Query()
	backQuery.Del("err")

	data := map[string]any{
		"Filters":    filters,
		"StatusTabs": projections.StatusTabs,
		"Query":      template.URL(backQuery.Encode()),
	}

	client := services.Connection.Ready(r.Context())
	if client == nil {
		data["Feedback"] = msgConfigureConnection
		data["Unconfigured"] = true
		renderTemplate(w, r, "requests.html", data)
		return
	}

	all, err := projections.QueryGetRequests(r.Context(), projections.GetRequestsDeps{ChoiceStore: client})
	if err != nil {
		slog.Error("requests_fetch_failed", "error", err)
		data["Feedback"] = msgFetchRequestsFailed
		renderTemplate(w, r, "requests.html", data)
		return
	}

	filtered := projections.FilterRequests(all, filters)
	rows := make([]choiceView, 0, len(filtered))
	for _, c := range filtered {
		rows = append(rows, toChoiceView(c))
	}

	if updateFailed := r.URL.Query().Get("err") == "maj"; updateFailed {
		data["Feedback"] = msgUpdateFailed
	} else if len(filtered) == 0 {
		data["Feedback"] = msgNoRequests
	} else {
		data["Feedback"] = fmt.Sprintf("%d demande(s) affichée(s).", len(filtered))
	}

	data["Loaded"] = true
	data["Rows"] = rows
	data["UserTypes"] = projections.UserTypes(all)

	renderTemplate(w, r, "requests.html", data)
}

// handleRequestStatus handles POST /requests/status, a moderation decision.
// On success the console is fully reloaded rather than locally patched, so
// what is shown always reflects the backend. Overlapping decisions are not
// mutually excluded; the backend's last write wins.
func handleRequestStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}

	back := "/requests"
	if q := r.FormValue("back"); q != "" {
		back += "?" + q
	}

	client := services.Connection.Ready(r.Context())
	if client == nil {
		http.Redirect(w, r, appendQueryFlag(back, "err=maj"), http.StatusSeeOther)
		return
	}

	sess, _ := middleware.GetSessionFromContext(r.Context())
	err := orchestrators.ExecuteUpdateChoiceStatus(r.Context(), orchestrators.UpdateChoiceStatusInput{
		ChoiceID:  r.FormValue("id"),
		Etat:      r.FormValue("etat"),
		DecidedBy: sess.Trigram,
	}, orchestrators.UpdateChoiceStatusDeps{
		ChoiceStore: client,
		Sender:      services.Sender,
		NotifyTo:    services.NotifyTo,
		NotifyFrom:  services.NotifyFrom,
	})
	if err != nil {
		http.Redirect(w, r, appendQueryFlag(back, "err=maj"), http.StatusSeeOther)
		return
	}

	http.Redirect(w, r, back, http.StatusSeeOther)
}

func appendQueryFlag(target, flag string) string {
	sep := "?"
	if u, err := url.Parse(target); err == nil && u.RawQuery != "" {
		sep = "&"
	}
	return target + sep + flag
}

// handleConnection handles GET (form) and POST (update) for /connection,
// the connection configuration screen. The form is prefilled from the stored
// config, falling back to the built-in defaults.
func handleConnection(w http.ResponseWriter, r *http.Request) {
	if r.Method == "GET" {
		cfg, ok := services.Connection.StoredConfig()
		data := map[string]any{
			"Configured": ok,
			"URL":        cfg.URL,
			"Key":        cfg.Key,
			"Help":       connectionHelp,
			"Next":       r.URL.Query().Get("next"),
		}
		if !ok {
			data["URL"] = connection.DefaultURL
			data["Key"] = connection.DefaultKey
		}
		renderTemplate(w, r, "connection.html", data)
		return
	}

	if r.Method == "POST" {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form submission", http.StatusBadRequest)
			return
		}

		cfg := connection.Config{
			URL: r.FormValue("supabaseUrl"),
			Key: r.FormValue("supabaseKey"),
		}
		if err := services.Connection.UpdateConfig(cfg); err != nil {
			renderTemplate(w, r, "connection.html", map[string]any{
				"Error": err.Error(),
				"URL":   cfg.URL,
				"Key":   cfg.Key,
				"Help":  connectionHelp,
				"Next":  r.FormValue("next"),
			})
			return
		}

		next := r.FormValue("next")
		if next == "" || next[0] != '/' {
			next = "/"
		}
		http.Redirect(w, r, next, http.StatusSeeOther)
		return
	}

	w.WriteHeader(http.StatusMethodNotAllowed)
}

// handleDisconnect handles POST /connection/disconnect. Clears the stored
// config and the in-memory handle, then lands on the connection form.
func handleDisconnect(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	services.Connection.Disconnect()
	http.Redirect(w, r, "/connection", http.StatusSeeOther)
}
