package views

import (
	"fmt"
	"sort"

	"github.com/lcamargo/docchat/internal/model"
	"github.com/lcamargo/docchat/internal/tui/ui"
	"github.com/rivo/tview"
)

// SuggestedQuestions are offered in an empty chat; pressing the matching
// number key submits one.
var SuggestedQuestions = []string{
	"Summarize the main points",
	"What are the key findings?",
	"Extract important dates",
	"List all mentioned names",
}

// ChatView renders the chat thread of the active collection, or a welcome
// screen with popular collections when nothing is active.
type ChatView struct {
	*tview.TextView
	theme *ui.Theme
}

// NewChatView creates the chat view.
func NewChatView(theme *ui.Theme) *ChatView {
	tv := tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWordWrap(true)
	tv.SetBorder(true).SetTitle(" Chat ")
	tv.SetBorderColor(theme.BorderColor)
	tv.SetBackgroundColor(theme.BgColor)
	tv.SetTitleColor(theme.TitleColor)

	return &ChatView{TextView: tv, theme: theme}
}

// ShowWelcome renders the no-active-collection screen: the most active
// collections plus a hint for the session fallback chat.
func (cv *ChatView) ShowWelcome(collections []*model.Collection) {
	cv.Clear()
	cv.SetTitle(" docchat ")

	_, _ = fmt.Fprint(cv, "\n [::b]Select a collection to chat with its documents.[-:-:-]\n\n")

	popular := popularCollections(collections, 6)
	if len(popular) > 0 {
		_, _ = fmt.Fprint(cv, " Most active:\n\n")
		for _, c := range popular {
			lock := ""
			if !c.IsPublic {
				lock = " [orange](private)[-]"
			}
			_, _ = fmt.Fprintf(cv, "   %s%s  [::d]%d docs, %d messages[-:-:-]\n",
				tview.Escape(c.Name), lock, c.DocumentCount, c.MessageCount)
		}
		_, _ = fmt.Fprint(cv, "\n")
	}

	_, _ = fmt.Fprint(cv, " Or just type below to ask without a collection.\n")
	cv.ScrollToBeginning()
}

// ShowThread renders the messages of a chat, with suggested questions when
// the thread is empty.
func (cv *ChatView) ShowThread(title string, msgs []model.ChatMessage, loading bool) {
	cv.Clear()
	cv.SetTitle(fmt.Sprintf(" %s ", tview.Escape(title)))

	if len(msgs) == 0 && !loading {
		_, _ = fmt.Fprint(cv, "\n Try asking:\n\n")
		for i, q := range SuggestedQuestions {
			_, _ = fmt.Fprintf(cv, "   [dodgerblue::b]%d[-:-:-]  %s\n", i+1, q)
		}
		return
	}

	for _, m := range msgs {
		who := "assistant"
		color := "cadetblue"
		if m.Role == model.RoleUser {
			who = "you"
			color = "lightskyblue"
		}
		ts := formatTimestamp(m.CreatedAt)
		_, _ = fmt.Fprintf(cv, "[%s::b]%s[-:-:-] [::d]%s[-:-:-]\n%s\n\n",
			color, who, ts, tview.Escape(sanitizeForTerminal(m.Content)))
	}

	if loading {
		_, _ = fmt.Fprint(cv, "[::d]thinking...[-:-:-]\n")
	}
	cv.ScrollToEnd()
}

// popularCollections returns the n most active collections by combined
// document and message count.
func popularCollections(collections []*model.Collection, n int) []*model.Collection {
	out := make([]*model.Collection, len(collections))
	copy(out, collections)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].MessageCount+out[i].DocumentCount >
			out[j].MessageCount+out[j].DocumentCount
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}
