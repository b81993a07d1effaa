// Package console holds the view state of the operations console. Each
// screen is a small state machine driven by API calls; rendering lives in
// render.go and is kept free of state transitions.
package console

import (
	"errors"

	"github.com/99minutos/opsboard/pkg/client"
)

// Phase is the load state of a screen.
type Phase int

const (
	PhaseLoading Phase = iota
	PhaseReady
	PhaseError
)

func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhaseReady:
		return "ready"
	case PhaseError:
		return "error"
	}
	return "unknown"
}

// FormMode is the state of a screen's form overlay.
type FormMode int

const (
	FormClosed FormMode = iota
	FormCreate
	FormEdit
)

func (m FormMode) String() string {
	switch m {
	case FormCreate:
		return "create"
	case FormEdit:
		return "edit"
	}
	return "closed"
}

type BannerKind int

const (
	BannerNone BannerKind = iota
	BannerSuccess
	BannerError
)

// Banner is the dismissable status line shown above a screen.
type Banner struct {
	Kind BannerKind
	Text string
}

var (
	ErrSubmitInFlight  = errors.New("a submit is already in flight")
	ErrFormClosed      = errors.New("no form is open")
	ErrNoPendingDelete = errors.New("no delete awaiting confirmation")
	ErrUnknownEntry    = errors.New("entry is not in the loaded list")
)

func successBanner(text string) Banner {
	return Banner{Kind: BannerSuccess, Text: text}
}

// errorBanner shows the envelope error, plus its message when present.
func errorBanner(err error) Banner {
	var ae *client.APIError
	if errors.As(err, &ae) {
		return Banner{Kind: BannerError, Text: ae.Error()}
	}
	return Banner{Kind: BannerError, Text: err.Error()}
}
