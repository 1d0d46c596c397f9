package engine

import (
	"context"

	"github.com/edubotswana/edubot/internal/domain"
	"github.com/edubotswana/edubot/internal/sms"
)

const (
	mainMenuOptions = "1. Learn a Topic\n2. Take a Quiz\n3. Chat Tutor\n4. Exit"
	mainMenuText    = "Welcome to EduBot!\nPrimary School Maths\n\n" + mainMenuOptions

	topicOptions = "1. Addition\n2. Subtraction\n3. Multiplication\n4. Division\n0. Back"
)

func topicMenu(action string) string {
	return "Select topic to " + action + ":\n\n" + topicOptions
}

// route dispatches on the first token. Sub-flows re-derive their position
// purely from the remaining tokens plus persisted sub-state.
func (e *Engine) route(ctx context.Context, sess *domain.Session, tokens []string) Reply {
	if len(tokens) == 0 {
		sess.CurrentMenu = domain.MenuMain
		e.metrics.Exchange("main")
		return Con(mainMenuText)
	}

	switch tokens[0] {
	case "1":
		e.metrics.Exchange("lesson")
		return e.handleLesson(ctx, sess, tokens[1:])
	case "2":
		e.metrics.Exchange("quiz")
		return e.handleQuiz(ctx, sess, tokens[1:])
	case "3":
		e.metrics.Exchange("chat")
		return e.handleChat(ctx, sess, tokens[1:])
	case "4":
		e.metrics.Exchange("exit")
		return e.handleExit(sess)
	default:
		// Session state is left untouched on unrecognized input.
		e.metrics.Exchange("invalid")
		return Con("Invalid choice.\n\n" + mainMenuOptions)
	}
}

// handleLesson drives the static content path: pick a topic, deliver the
// lesson out-of-band, terminate.
func (e *Engine) handleLesson(ctx context.Context, sess *domain.Session, rest []string) Reply {
	if len(rest) == 0 {
		sess.CurrentMenu = domain.MenuLesson
		return Con("%s", topicMenu("learn"))
	}

	choice := rest[0]
	if choice == "0" {
		sess.CurrentMenu = domain.MenuMain
		return Con(mainMenuText)
	}

	topic, ok := domain.TopicFromChoice(choice)
	if !ok {
		return Con("Invalid topic.\n\n" + topicOptions)
	}

	lesson, ok := e.catalog.Lesson(topic)
	if !ok {
		return End("Lesson not available right now.\nPlease dial back later.")
	}

	sess.CurrentMenu = domain.MenuLesson
	sess.Topic = topic
	e.deliverAsync("lesson", sess.PhoneNumber, sms.FormatLesson(lesson))

	return End("%s Lesson\n\nYour lesson is being sent\nvia SMS right now!\n\nCheck your messages.\nDial back for a quiz!", topic.Name())
}

// handleExit ends the session, summarizing it out-of-band when there is
// anything to summarize.
func (e *Engine) handleExit(sess *domain.Session) Reply {
	if sess.HasActivity() {
		e.deliverAsync("summary", sess.PhoneNumber, sms.FormatSessionSummary(sess))
		return End("Thanks for using EduBot!\n\nSession summary sent\nto your phone via SMS.\n\nDial back anytime!")
	}
	return End("Thanks for using EduBot!\n\nDial back anytime\nto learn more!")
}
