// Package app translates user intents from the frontends into record store
// mutations and keeps the derived view state.
package app

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"userdesk/local-app/internal/event"
	"userdesk/local-app/internal/form"
	"userdesk/local-app/internal/log"
	"userdesk/local-app/internal/model"
	"userdesk/local-app/internal/query"
	"userdesk/local-app/internal/records"
	"userdesk/local-app/internal/storage"
)

// ViewState is a snapshot of everything a frontend renders.
type ViewState struct {
	Users      []model.User
	SearchTerm string
	Draft      form.Draft
	EditTarget *int
	Error      string
	FormOpen   bool
}

// Editing reports whether the open form edits an existing record.
func (v ViewState) Editing() bool {
	return v.EditTarget != nil
}

// Controller is shared by the CLI and TUI frontends.
type Controller struct {
	store    *records.Store
	notifier Notifier
	logger   *log.Logger

	mu         sync.Mutex
	term       string
	view       []model.User
	draft      form.Draft
	editTarget *int
	formErr    string
	formOpen   bool
}

// NewController creates a Controller over store. The filtered view is
// recomputed on every collection change published on events.
func NewController(store *records.Store, events *event.EventManager, notifier Notifier, logger *log.Logger) *Controller {
	c := &Controller{
		store:    store,
		notifier: notifier,
		logger:   logger,
	}
	c.view = FilterByName(store.List(), "")
	events.Subscribe(func(event.Event) { c.refresh() }, event.CollectionChanged...)
	return c
}

// refresh recomputes the filtered view. It must not run under c.mu.
func (c *Controller) refresh() {
	users := c.store.List()
	c.mu.Lock()
	c.view = FilterByName(users, c.term)
	c.mu.Unlock()
}

func (c *Controller) notify(message string) {
	if c.notifier != nil {
		c.notifier.Notify(message)
	}
}

// State returns a snapshot of the view state.
func (c *Controller) State() ViewState {
	c.mu.Lock()
	defer c.mu.Unlock()
	state := ViewState{
		Users:      append([]model.User(nil), c.view...),
		SearchTerm: c.term,
		Draft:      c.draft,
		Error:      c.formErr,
		FormOpen:   c.formOpen,
	}
	if c.editTarget != nil {
		id := *c.editTarget
		state.EditTarget = &id
	}
	return state
}

// Users returns the filtered collection.
func (c *Controller) Users() []model.User {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]model.User(nil), c.view...)
}

// Lookup returns the record with id from the full collection.
func (c *Controller) Lookup(id int) (model.User, bool) {
	return c.store.Get(id)
}

// SearchChanged sets the search term and refilters.
func (c *Controller) SearchChanged(term string) {
	users := c.store.List()
	c.mu.Lock()
	c.term = term
	c.view = FilterByName(users, term)
	c.mu.Unlock()
}

// AddRequest opens an empty form for a new record.
func (c *Controller) AddRequest() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draft = form.Reduce(c.draft, form.Reset{})
	c.editTarget = nil
	c.formErr = ""
	c.formOpen = true
}

// EditRequest opens the form prefilled with u.
func (c *Controller) EditRequest(u model.User) {
	c.mu.Lock()
	defer c.mu.Unlock()
	draft := form.Reduce(c.draft, form.Reset{})
	for _, f := range model.UserFields {
		draft = form.Reduce(draft, form.SetField(f, u.Value(f)))
	}
	id := u.ID
	c.draft = draft
	c.editTarget = &id
	c.formErr = ""
	c.formOpen = true
}

// FieldChanged updates one field of the draft.
func (c *Controller) FieldChanged(field model.UserField, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draft = form.Reduce(c.draft, form.SetField(field, value))
}

// Cancel closes the form and discards the draft.
func (c *Controller) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closeForm()
}

// closeForm resets the form state. Callers hold c.mu.
func (c *Controller) closeForm() {
	c.draft = form.Reduce(c.draft, form.Reset{})
	c.editTarget = nil
	c.formErr = ""
	c.formOpen = false
}

// Submit validates the draft and adds or updates a record. A validation
// failure leaves the form open with State().Error set and returns the
// validation error. The form is closed after any store call.
func (c *Controller) Submit(ctx context.Context) error {
	c.mu.Lock()
	draft := c.draft
	var target *int
	if c.editTarget != nil {
		id := *c.editTarget
		target = &id
	}
	if err := form.Validate(draft); err != nil {
		c.formErr = err.Error()
		c.mu.Unlock()
		return err
	}
	c.formErr = ""
	c.mu.Unlock()

	var err error
	var message string
	if target == nil {
		var added model.User
		added, err = c.store.Add(ctx, draft)
		if err == nil {
			message = MsgUserAdded
			c.logger.Info(ctx, "User added", log.Fields{"id": added.ID, "name": added.Name})
		}
	} else {
		draft.ID = *target
		err = c.store.Update(ctx, draft)
		if err == nil {
			message = MsgUserUpdated
			c.logger.Info(ctx, "User updated", log.Fields{"id": draft.ID})
		}
	}

	c.mu.Lock()
	c.closeForm()
	c.mu.Unlock()

	switch {
	case errors.Is(err, records.ErrNotFound):
		c.logger.Warn(ctx, "Update of missing user", log.Fields{"id": draft.ID})
		c.notify(MsgUserNotFound)
		return notifiedError{err}
	case err != nil:
		c.notify(MsgSaveFailed)
		return notifiedError{err}
	}
	c.notify(message)
	return nil
}

// DeleteRequest removes the record with id. Confirmation is the caller's job.
func (c *Controller) DeleteRequest(ctx context.Context, id int) error {
	deleted, err := c.store.Delete(ctx, id)
	if err != nil {
		c.notify(MsgSaveFailed)
		return notifiedError{err}
	}
	if !deleted {
		c.notify(MsgUserNotFound)
		return notifiedError{fmt.Errorf("delete user %d: %w", id, records.ErrNotFound)}
	}
	c.logger.Info(ctx, "User deleted", log.Fields{"id": id})
	c.notify(MsgUserDeleted)
	return nil
}

// Where returns the users matching an expression filter.
func (c *Controller) Where(expression string) ([]model.User, error) {
	filter, err := query.Compile(expression)
	if err != nil {
		return nil, err
	}
	return filter.Apply(c.store.List())
}

// Export writes the full collection to filename.
func (c *Controller) Export(ctx context.Context, filename, format string) error {
	users := c.store.List()
	if err := storage.FileExport(users, filename, format); err != nil {
		c.logger.Error(ctx, MsgExportFailed, log.Fields{"file": filename, "error": err})
		c.notify(MsgExportFailed)
		return notifiedError{err}
	}
	c.logger.Info(ctx, "Users exported", log.Fields{"file": filename, "count": len(users)})
	c.notify(MsgExported)
	return nil
}

// Import replaces the collection with the contents of filename.
func (c *Controller) Import(ctx context.Context, filename, format string) error {
	users, err := storage.FileImport(filename, format)
	if err == nil {
		err = validateAll(users)
	}
	if err == nil {
		err = c.store.ReplaceAll(ctx, users)
	}
	if err != nil {
		c.logger.Error(ctx, MsgImportFailed, log.Fields{"file": filename, "error": err})
		c.notify(MsgImportFailed)
		return notifiedError{err}
	}
	c.logger.Info(ctx, "Users imported", log.Fields{"file": filename, "count": len(users)})
	c.notify(MsgImported)
	return nil
}

// validateAll applies the form rules to every imported record.
func validateAll(users []model.User) error {
	for _, u := range users {
		if err := form.Validate(u); err != nil {
			return fmt.Errorf("user %d: %w", u.ID, err)
		}
	}
	return nil
}
