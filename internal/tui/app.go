// Package tui is the terminal client. It drives the rest and realtime
// packages through the synchronizers in client/sync and renders their state
// with tview.
package tui

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"socialhub/client/realtime"
	"socialhub/client/rest"
	"socialhub/client/sync"
)

// App is the terminal application.
type App struct {
	app   *tview.Application
	pages *tview.Pages

	apiURL string
	wsURL  string

	api  *rest.Client
	conn *realtime.Conn

	convs   *sync.Conversations
	friends *sync.FriendGraph
	notifs  *sync.Notifications
	chat    *sync.PrivateChat

	convList  *tview.List
	chatView  *tview.TextView
	chatInput *tview.InputField
	statusBar *tview.TextView
	toastLine *tview.TextView
}

func NewApp(apiURL, wsURL string) *App {
	return &App{
		apiURL: apiURL,
		wsURL:  wsURL,
		api:    rest.New(apiURL),
	}
}

// Run starts the application loop. It blocks until quit.
func (a *App) Run() error {
	a.app = tview.NewApplication()
	a.pages = tview.NewPages()

	background := tview.NewBox()
	background.SetBackgroundColor(tcell.NewRGBColor(32, 32, 48))
	a.pages.AddPage("background", background, true, true)

	a.showAuthDialog()

	return a.app.SetRoot(a.pages, true).EnableMouse(false).Run()
}

func (a *App) quit() {
	if a.chat != nil {
		a.chat.Close()
	}
	if a.convs != nil {
		a.convs.Close()
	}
	if a.friends != nil {
		a.friends.Close()
	}
	if a.notifs != nil {
		a.notifs.Close()
	}
	a.app.Stop()
}

// redraw schedules a repaint from any goroutine.
func (a *App) redraw(fn func()) {
	a.app.QueueUpdateDraw(fn)
}

func (a *App) setToast(text string) {
	if a.toastLine != nil {
		a.toastLine.SetText(text)
	}
}

func statusLabel(s realtime.Status) string {
	switch s {
	case realtime.StatusConnected:
		return "[green]online[-]"
	case realtime.StatusConnecting:
		return "[yellow]connecting[-]"
	case realtime.StatusError:
		return "[red]connection failed[-]"
	default:
		return "[gray]offline[-]"
	}
}

func (a *App) updateStatusBar() {
	if a.statusBar == nil {
		return
	}
	unread := 0
	if a.convs != nil {
		unread = a.convs.TotalUnread()
	}
	bell := 0
	if a.notifs != nil {
		bell = a.notifs.Unread()
	}
	pending := 0
	if a.friends != nil {
		pending = len(a.friends.Pending())
	}
	a.statusBar.SetText(fmt.Sprintf(" %s | chats: %d unread | notifications: %d | requests: %d ",
		statusLabel(a.conn.Status()), unread, bell, pending))
}
