package tracker

import "github.com/Makepad-fr/tasktracker/internal/model"

// ItemView is the per-task edit state: whether the inline editor is open
// and the text typed into it. The text survives leaving edit mode.
type ItemView struct {
	editActive bool
	text       string
}

func NewItemView(t model.Task) *ItemView {
	return &ItemView{text: t.Title}
}

func (v *ItemView) Editing() bool { return v.editActive }
func (v *ItemView) Text() string  { return v.text }

func (v *ItemView) SetText(s string) { v.text = s }

// ToggleEdit switches between Edit and Done. Done keeps the typed text.
func (v *ItemView) ToggleEdit() {
	v.editActive = !v.editActive
}

// Label is the caption of the edit control.
func (v *ItemView) Label() string {
	if v.editActive {
		return "Done"
	}
	return "Edit"
}

// Commit closes the editor and hands back the text when it is non-empty.
func (v *ItemView) Commit() (string, bool) {
	if !v.editActive || v.text == "" {
		return "", false
	}
	v.editActive = false
	return v.text, true
}

// ItemViews keeps one ItemView per task id. Views are created lazily and
// outlive refetches, so pending text is kept for ids that come back.
type ItemViews struct {
	byID map[int]*ItemView
}

func NewItemViews() *ItemViews {
	return &ItemViews{byID: make(map[int]*ItemView)}
}

// For returns the view for t, creating it from t's title on first use.
func (vs *ItemViews) For(t model.Task) *ItemView {
	if v, ok := vs.byID[t.ID]; ok {
		return v
	}
	v := NewItemView(t)
	vs.byID[t.ID] = v
	return v
}

func (vs *ItemViews) Lookup(id int) (*ItemView, bool) {
	v, ok := vs.byID[id]
	return v, ok
}

func (vs *ItemViews) Forget(id int) {
	delete(vs.byID, id)
}

