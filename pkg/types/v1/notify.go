package v1

// SnackbarKind decides how a transient notification is styled.
type SnackbarKind string

const (
	SnackbarInfo    SnackbarKind = "info"
	SnackbarSuccess SnackbarKind = "success"
	SnackbarError   SnackbarKind = "error"
	SnackbarWarning SnackbarKind = "warning"
)

func (k SnackbarKind) Valid() bool {
	switch k {
	case SnackbarInfo, SnackbarSuccess, SnackbarError, SnackbarWarning:
		return true
	}
	return false
}

// Snackbar is a single transient message. ID increases with every
// ShowSnackbar call so a dismissal timer can tell whether it still owns the
// slot.
type Snackbar struct {
	ID      uint64
	Message string
	Kind    SnackbarKind
	Open    bool
}

// ConfirmOptions describe a yes/no question put to the user.
type ConfirmOptions struct {
	Title       string
	Message     string
	ConfirmText string
	CancelText  string
	IsDangerous bool
}

// WithDefaults fills the button labels the way the dialog expects.
func (o ConfirmOptions) WithDefaults() ConfirmOptions {
	if o.ConfirmText == "" {
		o.ConfirmText = "Confirm"
	}
	if o.CancelText == "" {
		o.CancelText = "Cancel"
	}
	return o
}

// Confirmation is the question currently shown to the user.
type Confirmation struct {
	ConfirmOptions
	ID     uint64
	Open   bool
	Queued int
}
