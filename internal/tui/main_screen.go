package tui

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"socialhub/client/realtime"
	"socialhub/client/sync"
	"socialhub/wire"
)

// startSession builds the realtime connection and the synchronizers, then
// swaps the auth dialog for the main screen.
func (a *App) startSession(user wire.UserSummary) {
	a.conn = realtime.New(a.wsURL, user.ID)
	a.conn.OnStatus(func(s realtime.Status) {
		a.redraw(a.updateStatusBar)
	})

	a.convs = sync.OpenConversations(a.api, a.conn, user.ID)
	a.friends = sync.OpenFriendGraph(a.api, a.conn)
	a.notifs = sync.OpenNotifications(a.api, a.conn)

	a.convs.OnChange(func() { a.redraw(func() { a.renderConversations(); a.updateStatusBar() }) })
	a.friends.OnChange(func() { a.redraw(a.updateStatusBar) })
	a.notifs.OnChange(func() { a.redraw(a.updateStatusBar) })
	a.notifs.OnToast(func(n wire.Notification) {
		a.redraw(func() {
			a.setToast(fmt.Sprintf("%s %sd your post %q", n.Sender.DisplayName(), n.Type, n.Post.Title))
		})
	})

	a.pages.RemovePage("auth")
	a.pages.RemovePage("background")
	a.pages.AddPage("main", a.createMainPage(user), true, true)
	a.app.SetFocus(a.convList)

	go func() {
		_ = a.convs.Load()
		_ = a.friends.Load(1, 10, "")
		_ = a.notifs.Load()
	}()
}

func (a *App) createMainPage(user wire.UserSummary) tview.Primitive {
	a.convList = tview.NewList()
	a.convList.SetBorder(true)
	a.convList.SetTitle(fmt.Sprintf(" Chats [%s] ", user.DisplayName()))
	a.convList.ShowSecondaryText(true)
	a.convList.SetHighlightFullLine(true)

	a.convList.SetSelectedFunc(func(index int, mainText, secondaryText string, shortcut rune) {
		convs := a.convs.List()
		if index < len(convs) {
			a.openChat(user.ID, convs[index].UserID, convs[index].UserName)
		}
	})

	a.chatView = tview.NewTextView()
	a.chatView.SetBorder(true)
	a.chatView.SetTitle(" Conversation ")
	a.chatView.SetDynamicColors(true)
	a.chatView.SetScrollable(true)

	a.chatInput = tview.NewInputField().SetLabel("> ")
	a.chatInput.SetDoneFunc(func(key tcell.Key) {
		if key != tcell.KeyEnter {
			return
		}
		text := a.chatInput.GetText()
		if text == "" || a.chat == nil {
			return
		}
		a.chatInput.SetText("")
		if err := a.chat.Send(text, ""); err != nil {
			a.setToast("[red]send failed: " + err.Error() + "[-]")
		}
	})

	a.toastLine = tview.NewTextView()
	a.toastLine.SetDynamicColors(true)

	a.statusBar = tview.NewTextView()
	a.statusBar.SetDynamicColors(true)
	a.statusBar.SetTextAlign(tview.AlignCenter)
	a.updateStatusBar()

	right := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(a.chatView, 0, 1, false).
		AddItem(a.chatInput, 1, 0, false)

	body := tview.NewFlex().
		AddItem(a.convList, 32, 0, true).
		AddItem(right, 0, 1, false)

	mainFlex := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(body, 0, 1, true).
		AddItem(a.toastLine, 1, 0, false).
		AddItem(a.statusBar, 1, 0, false)

	mainFlex.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyF5:
			go func() {
				_ = a.convs.Load()
				_ = a.notifs.Load()
			}()
			return nil
		case tcell.KeyTab:
			if a.app.GetFocus() == a.convList {
				a.app.SetFocus(a.chatInput)
			} else {
				a.app.SetFocus(a.convList)
			}
			return nil
		case tcell.KeyF10, tcell.KeyEsc:
			a.quit()
			return nil
		}
		return event
	})

	return mainFlex
}

func (a *App) renderConversations() {
	if a.convList == nil {
		return
	}
	a.convList.Clear()
	for _, conv := range a.convs.List() {
		name := conv.UserName
		if name == "" {
			name = fmt.Sprintf("user %d", conv.UserID)
		}
		if conv.UnreadCount > 0 {
			name = fmt.Sprintf("%s (%d)", name, conv.UnreadCount)
		}
		a.convList.AddItem(name, conv.LastMessage, 0, nil)
	}
}
