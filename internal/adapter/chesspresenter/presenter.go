package chesspresenter

import (
	"strings"
)

// Presenter delivers formatted messages and board images to an output
// without coupling the caller to where they end up.
type Presenter struct {
	sendMessage func(message string) error
	sendImage   func(png []byte) error
}

func NewPresenter(sendMessage func(message string) error, sendImage func(png []byte) error) *Presenter {
	return &Presenter{
		sendMessage: sendMessage,
		sendImage:   sendImage,
	}
}

func (p *Presenter) Board(message string, boardPNG []byte) error {
	if p == nil {
		return nil
	}

	if text := strings.TrimSpace(message); text != "" && p.sendMessage != nil {
		if err := p.sendMessage(message); err != nil {
			return err
		}
	}

	if len(boardPNG) > 0 && p.sendImage != nil {
		if err := p.sendImage(boardPNG); err != nil {
			return err
		}
	}

	return nil
}
