package tui

import (
	"fmt"

	"socialhub/client/sync"
)

// openChat switches the right pane to the conversation with peerID.
func (a *App) openChat(selfID, peerID int, title string) {
	if a.chat != nil {
		a.chat.Close()
	}

	chat := sync.OpenPrivateChat(a.api, a.conn, selfID, peerID, a.convs)
	chat.OnChange(func() {
		a.redraw(func() { a.renderChat(chat) })
	})
	a.chat = chat

	if title == "" {
		title = fmt.Sprintf("user %d", peerID)
	}
	a.chatView.SetTitle(fmt.Sprintf(" %s ", title))
	a.app.SetFocus(a.chatInput)

	go func() {
		if err := chat.Load(); err != nil {
			a.redraw(func() { a.setToast("[red]history failed: " + err.Error() + "[-]") })
		}
	}()
}

func (a *App) renderChat(chat *sync.PrivateChat) {
	if a.chatView == nil {
		return
	}
	a.chatView.Clear()
	for _, m := range chat.Messages() {
		who := fmt.Sprintf("user %d", m.SenderID)
		if m.Mine {
			who = "me"
		}
		suffix := ""
		if m.Pending {
			suffix = " [gray](sending...)[-]"
		}
		fmt.Fprintf(a.chatView, "[yellow]%s[-] %s: %s%s\n",
			m.Timestamp.Format("15:04"), who, m.Content, suffix)
	}
	a.chatView.ScrollToEnd()
}
