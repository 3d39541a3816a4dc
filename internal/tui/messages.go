package tui

import (
	"time"

	"github.com/flowday/flowday/internal/board"
	"github.com/flowday/flowday/internal/models"
	"github.com/flowday/flowday/internal/notify"
)

type loadedMsg struct {
	applied bool
	err     error
}

type committedMsg struct {
	result board.Result
}

type noticeMsg struct {
	notice notify.Notice
}

type tickMsg time.Time

// resultMsg reports a finished command or mutation.
type resultMsg struct {
	text string
	err  error
}

type loginMsg struct {
	user *models.User
	err  error
}
