package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"useradmin/internal/client"
	"useradmin/internal/domain"
	"useradmin/internal/domain/models"
	"useradmin/internal/http/middleware"
	"useradmin/internal/listing"
	"useradmin/internal/session"
	"useradmin/internal/utils"
	"useradmin/internal/view"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const sessionParam = "sid"

// Console serves the users page. Every open tab owns one mounted page in
// Sessions; the tab addresses it by the id embedded in its URLs.
type Console struct {
	Sessions *session.Registry
	Logger   *zap.SugaredLogger
	Now      func() time.Time
}

type stateResponse struct {
	SessionID  string            `json:"session_id"`
	State      listing.ListState `json:"state"`
	Query      listing.Query     `json:"query"`
	SearchTerm string            `json:"search_term"`
	Modal      listing.Modal     `json:"modal"`
}

func (h Console) logger() *zap.SugaredLogger { return utils.OrNop(h.Logger) }

func (h Console) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

// Index mounts a fresh page and renders the whole document.
func (h Console) Index(c *gin.Context) {
	sid, p := h.Sessions.Mount()
	utils.LogEvent(h.Logger, middleware.GetRequestID(c), "console", "mount", "session="+sid)
	c.HTML(http.StatusOK, view.TemplatePage, h.build(sid, p, "", nil))
}

// Table renders the list body. The page re-requests it whenever the event
// stream reports a change.
func (h Console) Table(c *gin.Context) {
	sid, p, ok := h.page(c)
	if !ok {
		return
	}
	h.renderBody(c, sid, p, "")
}

func (h Console) State(c *gin.Context) {
	sid, p, ok := h.page(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, stateResponse{
		SessionID:  sid,
		State:      p.Store().Snapshot(),
		Query:      p.Query(),
		SearchTerm: p.SearchTerm(),
		Modal:      p.Modal(),
	})
}

// Events streams a "changed" event after every store update. One event is
// sent on connect so a late subscriber catches up. The page cannot idle out
// while the stream is open.
func (h Console) Events(c *gin.Context) {
	p, release, ok := h.Sessions.Hold(c.Param(sessionParam))
	if !ok {
		respondError(c, http.StatusNotFound, "not_found", "session not found")
		return
	}
	defer release()
	changes, cancel := p.Store().Subscribe()
	defer cancel()

	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")

	ctx := c.Request.Context()
	first := true
	c.Stream(func(w io.Writer) bool {
		if first {
			first = false
			c.SSEvent("changed", p.Store().Snapshot().Seq)
			return true
		}
		select {
		case <-ctx.Done():
			return false
		case _, open := <-changes:
			if !open {
				return false
			}
			c.SSEvent("changed", p.Store().Snapshot().Seq)
			return true
		}
	})
}

// Search records the raw term. The refetch happens once typing settles.
func (h Console) Search(c *gin.Context) {
	_, p, ok := h.page(c)
	if !ok {
		return
	}
	p.SetSearchTerm(c.PostForm(listing.SearchKey))
	c.Status(http.StatusNoContent)
}

func (h Console) Filter(c *gin.Context) {
	sid, p, ok := h.page(c)
	if !ok {
		return
	}
	key := strings.TrimSpace(c.PostForm("key"))
	if key == "" || key == listing.PageParam || key == listing.LimitParam {
		respondError(c, http.StatusBadRequest, "validation_error", "invalid filter key")
		return
	}
	p.SetFilter(key, c.PostForm("value"))
	h.renderBody(c, sid, p, "")
}

func (h Console) Page(c *gin.Context) {
	sid, p, ok := h.page(c)
	if !ok {
		return
	}
	page := formInt(c, "page")
	size := formInt(c, "size")
	if page == 0 && size == 0 {
		respondError(c, http.StatusBadRequest, "validation_error", "page or size required")
		return
	}
	if size > 0 && page == 0 {
		page = 1
	}
	p.SetPage(page, size)
	h.renderBody(c, sid, p, "")
}

func (h Console) Refresh(c *gin.Context) {
	sid, p, ok := h.page(c)
	if !ok {
		return
	}
	p.Refresh()
	h.renderBody(c, sid, p, "")
}

func (h Console) NewRow(c *gin.Context) {
	sid, p, ok := h.page(c)
	if !ok {
		return
	}
	p.OpenCreate()
	h.renderBody(c, sid, p, "")
}

func (h Console) EditRow(c *gin.Context) {
	sid, p, ok := h.page(c)
	if !ok {
		return
	}
	u, ok := h.row(c, p)
	if !ok {
		return
	}
	p.Edit(u)
	h.renderBody(c, sid, p, "")
}

// CreateRow submits the create form.
func (h Console) CreateRow(c *gin.Context) {
	sid, p, ok := h.page(c)
	if !ok {
		return
	}
	if p.Modal() != listing.ModalCreate {
		p.OpenCreate()
	}
	h.save(c, sid, p)
}

// UpdateRow submits the edit form for the row in the path.
func (h Console) UpdateRow(c *gin.Context) {
	sid, p, ok := h.page(c)
	if !ok {
		return
	}
	if sel := p.Store().Snapshot().Selected; p.Modal() != listing.ModalEdit || sel == nil || !sameID(c, sel.ID) {
		u, ok := h.row(c, p)
		if !ok {
			return
		}
		p.Edit(u)
	}
	h.save(c, sid, p)
}

// AskDelete opens the confirmation for a row. Nothing is deleted yet.
func (h Console) AskDelete(c *gin.Context) {
	sid, p, ok := h.page(c)
	if !ok {
		return
	}
	u, ok := h.row(c, p)
	if !ok {
		return
	}
	p.RequestDelete(u)
	h.renderBody(c, sid, p, "")
}

// ConfirmDelete deletes the row once the user has confirmed it.
func (h Console) ConfirmDelete(c *gin.Context) {
	sid, p, ok := h.page(c)
	if !ok {
		return
	}
	sel := p.Store().Snapshot().Selected
	if p.Modal() != listing.ModalDelete || sel == nil || !sameID(c, sel.ID) {
		respondError(c, http.StatusConflict, "conflict", "delete was not requested for this row")
		return
	}
	if err := p.ConfirmDelete(c.Request.Context()); err != nil {
		h.logger().Warnw("delete failed", "session", sid, "id", sel.ID, "error", err)
		h.renderBody(c, sid, p, formMessage(err))
		return
	}
	h.renderBody(c, sid, p, "")
}

func (h Console) CloseModal(c *gin.Context) {
	sid, p, ok := h.page(c)
	if !ok {
		return
	}
	p.CloseModal()
	h.renderBody(c, sid, p, "")
}

// ExportPDF writes the rows currently on screen as a PDF attachment.
func (h Console) ExportPDF(c *gin.Context) {
	_, p, ok := h.page(c)
	if !ok {
		return
	}
	st := p.Store().Snapshot()
	q := p.Query()
	data, name, err := view.ExportPDF(view.BuildRows(st.Items), view.BuildPager(q.Pagination, st.Total), q.Filters, h.now())
	if err != nil {
		_ = c.Error(err)
		respondError(c, http.StatusInternalServerError, "internal_error", "pdf export failed")
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.Data(http.StatusOK, "application/pdf", data)
}

// Unmount drops the tab's page.
func (h Console) Unmount(c *gin.Context) {
	sid := c.Param(sessionParam)
	if !h.Sessions.Unmount(sid) {
		respondError(c, http.StatusNotFound, "not_found", "session not found")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h Console) save(c *gin.Context, sid string, p *listing.Page) {
	var in models.UserInput
	if err := c.ShouldBind(&in); err != nil {
		h.renderForm(c, sid, p, "invalid form: "+err.Error(), &in)
		return
	}
	if _, err := p.Save(c.Request.Context(), in); err != nil {
		h.logger().Infow("save rejected", "session", sid, "error", err)
		h.renderForm(c, sid, p, formMessage(err), &in)
		return
	}
	h.renderBody(c, sid, p, "")
}

func (h Console) page(c *gin.Context) (string, *listing.Page, bool) {
	sid := c.Param(sessionParam)
	p, ok := h.Sessions.Get(sid)
	if !ok {
		// htmx follows this header back to a freshly mounted page.
		c.Header("HX-Redirect", "/users")
		respondError(c, http.StatusNotFound, "not_found", "session not found")
		return "", nil, false
	}
	return sid, p, true
}

func (h Console) row(c *gin.Context, p *listing.Page) (models.User, bool) {
	id, err := paramID(c, "id")
	if err != nil {
		RespondDomainError(c, err)
		return models.User{}, false
	}
	u, ok := p.FindRow(id)
	if !ok {
		RespondDomainError(c, domain.NotFoundError{Resource: "user"})
		return models.User{}, false
	}
	return u, true
}

func (h Console) build(sid string, p *listing.Page, formErr string, typed *models.UserInput) view.UsersPage {
	return view.BuildUsersPage(view.Input{
		SessionID:  sid,
		State:      p.Store().Snapshot(),
		Query:      p.Query(),
		SearchTerm: p.SearchTerm(),
		Modal:      p.Modal(),
		FormError:  formErr,
		FormInput:  typed,
	})
}

func (h Console) renderBody(c *gin.Context, sid string, p *listing.Page, formErr string) {
	c.HTML(http.StatusOK, view.TemplateBody, h.build(sid, p, formErr, nil))
}

// renderForm re-renders an open form with the rejected submission.
func (h Console) renderForm(c *gin.Context, sid string, p *listing.Page, formErr string, typed *models.UserInput) {
	c.HTML(http.StatusOK, view.TemplateBody, h.build(sid, p, formErr, typed))
}

func sameID(c *gin.Context, id int64) bool {
	got, err := paramID(c, "id")
	return err == nil && got == id
}

func formInt(c *gin.Context, key string) int {
	n, err := strconv.Atoi(strings.TrimSpace(c.PostForm(key)))
	if err != nil || n < 1 {
		return 0
	}
	return n
}

// formMessage picks the text shown inside a modal for a failed write.
func formMessage(err error) string {
	var ve domain.ValidationError
	if errors.As(err, &ve) {
		return ve.Error()
	}
	var ae *client.APIError
	if errors.As(err, &ae) {
		return ae.Error()
	}
	if errors.Is(err, listing.ErrNoSelection) {
		return "no user selected"
	}
	return err.Error()
}
