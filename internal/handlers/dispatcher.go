package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"

	"pizza_back_end/internal/logger"
	"pizza_back_end/internal/models"
	"pizza_back_end/internal/services"
)

// MaxBodyBytes borne la taille du corps JSON accepté.
const MaxBodyBytes = 1 << 20

type Resource string

const (
	ResourceUsers  Resource = "users"
	ResourceOrders Resource = "orders"
	ResourcePing   Resource = "ping"
)

// Request est la forme normalisée d'une requête entrante.
type Request struct {
	Resource Resource
	Action   string
	Method   string
	Query    url.Values
	Headers  http.Header
	Payload  Payload
}

// Payload est le corps JSON décodé; vide si absent ou invalide.
type Payload map[string]any

// String renvoie la valeur si c'est une chaîne, "" sinon.
func (p Payload) String(key string) string {
	if s, ok := p[key].(string); ok {
		return s
	}
	return ""
}

// Response est produite par chaque action puis normalisée à l'écriture.
type Response struct {
	Status int
	Body   any
}

func ok(body any) Response {
	return Response{Status: http.StatusOK, Body: body}
}

func success(msg string) gin.H {
	return gin.H{"Success": msg}
}

func failure(msg string) gin.H {
	return gin.H{"Error": msg}
}

// Dispatcher route chaque requête vers le groupe users ou orders selon le
// premier segment du chemin, puis vers l'action selon le reste.
type Dispatcher struct {
	users  *UserHandler
	orders *OrderHandler
	log    *logger.Logger
}

func NewDispatcher(accounts *services.AccountService, sessions *services.SessionManager, carts *services.CartService, menu *models.Menu, log *logger.Logger) *Dispatcher {
	return &Dispatcher{
		users:  &UserHandler{accounts: accounts, sessions: sessions, menu: menu, log: log},
		orders: &OrderHandler{sessions: sessions, carts: carts, log: log},
		log:    log,
	}
}

// Handle est monté sur la route catch-all.
func (d *Dispatcher) Handle(c *gin.Context) {
	req := NormalizeRequest(c)
	resp := d.Dispatch(c.Request.Context(), req)
	writeResponse(c, resp)
}

func (d *Dispatcher) Dispatch(ctx context.Context, req Request) Response {
	switch req.Resource {
	case ResourcePing:
		return ok(nil)
	case ResourceUsers:
		action, found := ParseUserAction(req.Action)
		if !found || !slices.Contains(action.Methods(), req.Method) {
			return errorResponse(groupUsers, errMethodNotAllowed(req), "")
		}
		return d.users.Handle(ctx, action, req)
	case ResourceOrders:
		action, found := ParseOrderAction(req.Action)
		if !found || !slices.Contains(action.Methods(), req.Method) {
			return errorResponse(groupOrders, errMethodNotAllowed(req), "")
		}
		return d.orders.Handle(ctx, action, req)
	default:
		return Response{Status: http.StatusNotFound}
	}
}

// NormalizeRequest découpe le chemin et décode le corps JSON.
func NormalizeRequest(c *gin.Context) Request {
	path := strings.Trim(c.Request.URL.Path, "/")
	resource, action, _ := strings.Cut(path, "/")

	return Request{
		Resource: Resource(strings.ToLower(resource)),
		Action:   strings.Trim(action, "/"),
		Method:   c.Request.Method,
		Query:    c.Request.URL.Query(),
		Headers:  c.Request.Header,
		Payload:  readPayload(c),
	}
}

func readPayload(c *gin.Context) Payload {
	if c.Request.Body == nil {
		return Payload{}
	}
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, MaxBodyBytes))
	if err != nil || len(body) == 0 {
		return Payload{}
	}
	var p Payload
	if err := json.Unmarshal(body, &p); err != nil || p == nil {
		return Payload{}
	}
	return p
}

// writeResponse garantit un code valide et un objet JSON unique.
func writeResponse(c *gin.Context, resp Response) {
	status := resp.Status
	if status < 100 || status > 599 {
		status = http.StatusOK
	}
	body := resp.Body
	if body == nil {
		body = gin.H{}
	}
	data, err := json.Marshal(body)
	if err != nil || len(data) == 0 || data[0] != '{' {
		status, data = http.StatusInternalServerError, []byte("{}")
	}
	c.Data(status, "application/json", data)
}
