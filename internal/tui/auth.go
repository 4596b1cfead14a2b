package tui

import (
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"socialhub/wire"
)

func (a *App) showAuthDialog() {
	form := tview.NewForm()
	form.SetBorder(true)
	form.SetTitle(" socialhub login ")

	status := tview.NewTextView()
	status.SetTextColor(tcell.ColorRed)
	status.SetTextAlign(tview.AlignCenter)
	status.SetDynamicColors(true)

	emailField := tview.NewInputField().SetLabel("Email: ").SetFieldWidth(30)
	passwordField := tview.NewInputField().SetLabel("Password: ").SetFieldWidth(30).SetMaskCharacter('*')
	firstNameField := tview.NewInputField().SetLabel("First name: ").SetFieldWidth(30)
	lastNameField := tview.NewInputField().SetLabel("Last name: ").SetFieldWidth(30)

	form.AddFormItem(emailField)
	form.AddFormItem(passwordField)
	form.AddFormItem(firstNameField)
	form.AddFormItem(lastNameField)

	form.AddButton("Login", func() {
		email, password := emailField.GetText(), passwordField.GetText()
		if email == "" || password == "" {
			status.SetText("[red]email and password required[-]")
			return
		}
		a.doLogin(email, password, status)
	})

	form.AddButton("Register", func() {
		email, password := emailField.GetText(), passwordField.GetText()
		if email == "" || password == "" {
			status.SetText("[red]email and password required[-]")
			return
		}
		_, err := a.api.Register(wire.RegisterRequest{
			FirstName: firstNameField.GetText(),
			LastName:  lastNameField.GetText(),
			Email:     email,
			Password:  password,
		})
		if err != nil {
			status.SetText("[red]" + err.Error() + "[-]")
			return
		}
		a.doLogin(email, password, status)
	})

	form.AddButton("Quit", func() {
		a.app.Stop()
	})

	flex := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(form, 0, 1, true).
		AddItem(status, 1, 0, false)

	centered := tview.NewFlex().
		AddItem(nil, 0, 1, false).
		AddItem(tview.NewFlex().SetDirection(tview.FlexRow).
			AddItem(nil, 0, 1, false).
			AddItem(flex, 15, 0, true).
			AddItem(nil, 0, 1, false), 50, 0, true).
		AddItem(nil, 0, 1, false)

	a.pages.AddPage("auth", centered, true, true)
	a.app.SetFocus(form)
}

func (a *App) doLogin(email, password string, status *tview.TextView) {
	auth, err := a.api.Login(email, password)
	if err != nil {
		status.SetText("[red]" + err.Error() + "[-]")
		return
	}
	a.startSession(auth.User)
}
