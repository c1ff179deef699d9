package tui

type confirmModel struct {
	message string
}

func (m confirmModel) View() string {
	body := titleStyle.Render("Confirm") + "\n\n" + m.message + "\n\n" + helpStyle.Render("y: yes │ n/esc: no")
	return overlayBoxStyle.Render(body)
}
