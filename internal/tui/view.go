package tui

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/skillgenie/skillgenie/internal/quiz"
	"github.com/skillgenie/skillgenie/internal/ui/components"
	"github.com/skillgenie/skillgenie/internal/ui/layout"
	"github.com/skillgenie/skillgenie/internal/ui/theme"
)

// lowTimeSeconds is when the timer turns to the warning color.
const lowTimeSeconds = 60

func (m *Model) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true
	v.SetContent(m.render())
	return v
}

// render draws the whole screen for the current terminal size.
func (m *Model) render() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	if layout.IsTooSmall(m.width, m.height) {
		return layout.RenderMinSizeMessage(m.width, m.height)
	}
	header := layout.RenderHeader(m.quiz.Title, m.status(), m.width)
	footer := layout.RenderFooter(m.keyHints(), m.width)
	return layout.RenderFrame(header, m.content(), footer, m.width, m.height)
}

// content renders the body of the current screen.
func (m *Model) content() string {
	var body string
	switch m.screen {
	case screenIntro:
		body = m.renderIntro()
	case screenQuestion:
		body = m.renderQuestion()
	case screenResult:
		body = m.renderResult()
	}
	if m.errMsg != "" {
		body += "\n\n" + theme.Incorrect.Render(m.errMsg)
	}
	return body
}

func (m *Model) status() string {
	if m.screen == screenIntro {
		return ""
	}
	return formatClock(m.session.RemainingSeconds())
}

func (m *Model) keyHints() []layout.KeyHint {
	switch m.screen {
	case screenIntro:
		return []layout.KeyHint{
			{Key: "Enter", Description: "Start"},
			{Key: "Q", Description: "Quit"},
		}
	case screenQuestion:
		return []layout.KeyHint{
			{Key: "↑↓/1-9", Description: "Select"},
			{Key: "Enter/→", Description: "Next"},
			{Key: "←", Description: "Back"},
			{Key: "E", Description: "Explain"},
			{Key: "S", Description: "Submit"},
		}
	default:
		return []layout.KeyHint{
			{Key: "R", Description: "Retake"},
			{Key: "Enter", Description: "Done"},
		}
	}
}

func (m *Model) renderIntro() string {
	var b strings.Builder
	b.WriteString(theme.Title.Render(m.quiz.Title))
	b.WriteString("\n")
	if m.quiz.Description != "" {
		b.WriteString(theme.Subtitle.Render(m.quiz.Description))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "Topic:          %s\n", m.quiz.Topic)
	if m.quiz.Difficulty != "" {
		fmt.Fprintf(&b, "Difficulty:     %s\n", m.quiz.Difficulty)
	}
	fmt.Fprintf(&b, "Questions:      %d\n", m.session.Len())
	fmt.Fprintf(&b, "Time limit:     %s\n", formatClock(m.session.TimeLimit()))
	fmt.Fprintf(&b, "Passing score:  %d%%\n", m.quiz.PassingScore)
	b.WriteString("\n")
	b.WriteString(theme.Hint.Render("Press Enter to start. The timer starts immediately."))
	return b.String()
}

func (m *Model) renderQuestion() string {
	s := m.session
	q := s.Current()

	var b strings.Builder
	fmt.Fprintf(&b, "Question %d of %d", s.CurrentIndex()+1, s.Len())
	b.WriteString("\n")

	bar := components.NewProgressBar("Time", float64(s.RemainingSeconds())/float64(s.TimeLimit()), max(m.width-8, 20))
	if s.RemainingSeconds() <= lowTimeSeconds {
		bar.Fill = theme.Warning.Background(theme.Accent)
	}
	b.WriteString(bar.View())
	b.WriteString("\n\n")

	b.WriteString(theme.Body.Bold(true).Render(q.Prompt))
	b.WriteString("\n\n")
	b.WriteString(components.MultiChoice{
		Options:  q.Options,
		Selected: s.Selection(),
		Correct:  q.CorrectOption,
	}.View())

	if m.showExplanation && q.Explanation != "" {
		b.WriteString("\n\n")
		b.WriteString(theme.Card.Render(theme.Hint.Render(q.Explanation)))
	}
	return b.String()
}

func (m *Model) renderResult() string {
	r := m.result
	if r == nil {
		return ""
	}

	var b strings.Builder
	verdict := theme.Correct.Render("PASSED")
	if !r.Passed {
		verdict = theme.Incorrect.Render("NOT PASSED")
	}
	fmt.Fprintf(&b, "%s  %s\n", theme.Title.Render(fmt.Sprintf("%d%%", r.PercentScore)), verdict)
	fmt.Fprintf(&b, "%d of %d correct · %d points · passing score %d%% · time used %s\n",
		r.CorrectCount, r.TotalQuestions, r.TotalPoints, r.PassingScore, formatClock(r.ElapsedSeconds))
	b.WriteString(theme.Subtitle.Render(r.Feedback))
	b.WriteString("\n")
	if r.AutoSubmitted {
		b.WriteString(theme.Warning.Render("Time ran out; the quiz was submitted automatically."))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	questions := m.session.Questions()
	for _, pq := range r.PerQuestion {
		q := questions[pq.QuestionIndex]
		mark := theme.Correct.Render("✓")
		if !pq.IsCorrect {
			mark = theme.Incorrect.Render("✗")
		}
		answer := "unanswered"
		if pq.SelectedOption != quiz.Unanswered {
			answer = components.Label(pq.SelectedOption)
		}
		fmt.Fprintf(&b, "%s %2d. %s\n", mark, pq.QuestionIndex+1, q.Prompt)
		fmt.Fprintf(&b, "      %s\n", theme.Dimmed.Render(fmt.Sprintf(
			"your answer: %s · correct: %s) %s", answer, components.Label(pq.CorrectOption), q.Options[pq.CorrectOption])))
	}

	switch {
	case !m.recorded:
	case m.saveErr != nil:
		b.WriteString("\n" + theme.Incorrect.Render("Could not save result: "+m.saveErr.Error()))
	default:
		b.WriteString("\n" + theme.Hint.Render("Result saved."))
	}
	return b.String()
}

// formatClock renders seconds as m:ss.
func formatClock(seconds int) string {
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}
