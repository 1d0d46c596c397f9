package engine

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/edubotswana/edubot/internal/domain"
	"github.com/edubotswana/edubot/internal/llm"
	"github.com/edubotswana/edubot/internal/sms"
)

const (
	chatTopicMenuText = "Chat with the maths tutor!\n\nSelect a topic:\n\n" + topicOptions

	answeredMenu = "1. Ask another\n2. Change topic\n0. Exit chat"
)

func chatTypeMenu(topic domain.Topic) string {
	return topic.Name() + " Tutor\n\nWhat would you like?\n\n1. Explain a concept\n2. Show an example\n3. Solve a problem\n4. Free chat\n0. Back"
}

// typePrompt is the type-specific invitation shown when entering Prompting.
func typePrompt(topic domain.Topic, convType domain.ConversationType) string {
	name := strings.ToLower(topic.Name())
	switch convType {
	case domain.ConvExplain:
		return "What should I explain about " + name + "?\n\nType your question:"
	case domain.ConvExample:
		return "Ask me for a " + name + " example!\n\nType what you want to see:"
	case domain.ConvSolve:
		return "Type a " + name + " problem\nand I will solve it:"
	default:
		return "Ask me anything about " + name + ":"
	}
}

// handleChat drives TopicSelect -> TypeSelect -> Prompting -> Answered.
// When chat is already active, the flow skips straight to conversation
// handling rather than restarting selection.
func (e *Engine) handleChat(ctx context.Context, sess *domain.Session, rest []string) Reply {
	chat := sess.ChatState
	if chat != nil && chat.Active {
		if len(rest) == 0 {
			return Con("%s", typePrompt(chat.Topic, chat.ConversationType))
		}
		return e.handleChatToken(ctx, sess, rest[len(rest)-1])
	}
	if chat != nil {
		// Mid-session reselection after a topic change. The cumulative path
		// still carries the earlier conversation tokens, so only the latest
		// token is meaningful; the stage comes from the persisted state.
		return e.handleChatReselect(sess, rest)
	}

	// TopicSelect
	if len(rest) == 0 {
		sess.CurrentMenu = domain.MenuChat
		return Con(chatTopicMenuText)
	}
	if rest[0] == "0" {
		sess.CurrentMenu = domain.MenuMain
		return Con(mainMenuText)
	}
	topic, ok := domain.TopicFromChoice(rest[0])
	if !ok {
		return Con("Invalid topic.\n\n" + topicOptions)
	}

	// TypeSelect
	if len(rest) == 1 {
		sess.CurrentMenu = domain.MenuChat
		sess.Topic = topic
		return Con("%s", chatTypeMenu(topic))
	}
	if rest[1] == "0" {
		return Con(chatTopicMenuText)
	}
	convType, ok := domain.ConversationTypeFromChoice(rest[1])
	if !ok {
		return Con("Invalid choice.\n\n%s", chatTypeMenu(topic))
	}

	// Enter Prompting.
	chat = domain.NewChatState(topic)
	sess.ChatState = chat
	chat.ConversationType = convType
	sess.CurrentMenu = domain.MenuChat
	sess.Topic = topic

	if len(rest) == 2 {
		return Con("%s", typePrompt(topic, convType))
	}
	return e.handleChatToken(ctx, sess, rest[len(rest)-1])
}

// handleChatReselect interprets the latest token of an inactive chat: first a
// topic choice, then a conversation type, after which the chat reactivates.
func (e *Engine) handleChatReselect(sess *domain.Session, rest []string) Reply {
	chat := sess.ChatState
	if len(rest) == 0 {
		return Con(chatTopicMenuText)
	}
	token := strings.TrimSpace(rest[len(rest)-1])

	if chat.Topic == "" {
		if token == "0" {
			sess.CurrentMenu = domain.MenuMain
			return Con(mainMenuText)
		}
		topic, ok := domain.TopicFromChoice(token)
		if !ok {
			return Con("Invalid topic.\n\n" + topicOptions)
		}
		chat.Topic = topic
		sess.Topic = topic
		return Con("%s", chatTypeMenu(topic))
	}

	if token == "0" {
		chat.Topic = ""
		return Con(chatTopicMenuText)
	}
	convType, ok := domain.ConversationTypeFromChoice(token)
	if !ok {
		return Con("Invalid choice.\n\n%s", chatTypeMenu(chat.Topic))
	}
	chat.Reactivate(chat.Topic)
	chat.ConversationType = convType
	sess.CurrentMenu = domain.MenuChat
	return Con("%s", typePrompt(chat.Topic, convType))
}

// handleChatToken interprets the latest token while a conversation is live:
// digits 0/1/2 are menu actions, anything else is a free-text question.
func (e *Engine) handleChatToken(ctx context.Context, sess *domain.Session, token string) Reply {
	chat := sess.ChatState

	switch strings.TrimSpace(token) {
	case "1": // ask another, same topic and type
		return Con("%s", typePrompt(chat.Topic, chat.ConversationType))
	case "2": // change topic; history survives, context window does not
		chat.Deactivate()
		return Con(chatTopicMenuText)
	case "0": // exit chat, deliver the conversation out-of-band
		if len(chat.FullHistory) > 0 {
			e.deliverAsync("chat_history", sess.PhoneNumber, sms.FormatChatHistory(chat.Topic, chat.FullHistory))
			return End("Chat ended.\n\nYour full conversation is\non its way via SMS.\n\nDial back anytime!")
		}
		return End("Chat ended.\n\nDial back anytime!")
	default:
		return e.handleChatQuestion(ctx, sess, token)
	}
}

// handleChatQuestion runs one tutor turn under the interactive deadline.
func (e *Engine) handleChatQuestion(ctx context.Context, sess *domain.Session, question string) Reply {
	chat := sess.ChatState

	question = strings.TrimSpace(question)
	if len(question) < e.cfg.MinQuestionChars {
		return Con("Please ask a longer question.\n\n%s", typePrompt(chat.Topic, chat.ConversationType))
	}

	req := llm.ChatRequest{
		Topic:            chat.Topic,
		Question:         question,
		Context:          slices.Clone(chat.ContextWindow),
		ConversationType: chat.ConversationType,
	}

	var answer string
	outcome := OutcomeEmpty
	if e.generator != nil {
		answer, outcome = awaitWithDeadline(ctx, e.cfg.InteractiveDeadline,
			func(c context.Context) (string, error) {
				return e.generator.ChatAnswer(c, req)
			},
			func(s string) bool { return strings.TrimSpace(s) == "" },
		)
	}
	e.metrics.Generation("chat", outcome.String())

	switch outcome {
	case OutcomeSuccess:
		short, full, truncated := e.shapeChat(answer)
		chat.AddTurn(domain.Turn{
			Question:     question,
			AnswerShort:  short,
			AnswerFull:   full,
			WasTruncated: truncated,
			Timestamp:    time.Now().UTC(),
		}, e.cfg.ContextTurns)
		return Con("%s\n\n%s", short, answeredMenu)

	case OutcomeTimedOut:
		// The turn is not recorded yet; the continuation records it once
		// the final outcome is known.
		e.continueChatAnswer(sess.SessionID, sess.PhoneNumber, req)
		return Con("%s\n\n%s", e.cfg.TimeoutAckText, answeredMenu)

	default: // OutcomeEmpty, including unexpected generator errors
		fallback := e.cfg.FallbackText
		chat.AddTurn(domain.Turn{
			Question:    question,
			AnswerShort: fallback,
			AnswerFull:  fallback,
			Timestamp:   time.Now().UTC(),
		}, e.cfg.ContextTurns)
		return Con("%s\n\n%s", fallback, answeredMenu)
	}
}

// continueChatAnswer retries the generation on a detached continuation with
// the background deadline. A fresh call is issued rather than continuing the
// abandoned one, so a timed-out question may briefly run two generation
// attempts; that is the accepted cost of never blocking the interactive
// path. The result only ever reaches the user through the out-of-band
// channel.
func (e *Engine) continueChatAnswer(sessionID, phoneNumber string, req llm.ChatRequest) {
	e.bg.Add(1)
	go func() {
		defer e.bg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), e.cfg.BackgroundDeadline)
		answer, err := e.generator.ChatAnswer(ctx, req)
		cancel()

		turn := domain.Turn{
			Question:   req.Question,
			WasTimeout: true,
			Timestamp:  time.Now().UTC(),
		}

		deliverCtx, deliverCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer deliverCancel()

		if err == nil && strings.TrimSpace(answer) != "" {
			short, full, truncated := e.shapeChat(answer)
			turn.AnswerShort, turn.AnswerFull, turn.WasTruncated = short, full, truncated

			e.metrics.Continuation("answered")
			e.metrics.Delivery("timeout_answer")
			if derr := e.notifier.Deliver(deliverCtx, phoneNumber, sms.FormatTimeoutAnswer(req.Question, full)); derr != nil {
				e.logger.Warn("delayed answer delivery failed", "session", sessionID, "err", derr)
			}
		} else {
			turn.AnswerShort = e.cfg.FallbackText
			turn.AnswerFull = e.cfg.FallbackText

			e.metrics.Continuation("failed")
			e.metrics.Delivery("apology")
			e.logger.Info("background generation failed", "session", sessionID, "err", err)
			if derr := e.notifier.Deliver(deliverCtx, phoneNumber, sms.FormatApology(req.Question)); derr != nil {
				e.logger.Warn("apology delivery failed", "session", sessionID, "err", derr)
			}
		}

		e.recordDeferredTurn(sessionID, turn)
	}()
}

// recordDeferredTurn writes the timed-out turn back into the session once
// its outcome is known. The session may have expired meanwhile; that is
// fine, the answer already went out via SMS.
func (e *Engine) recordDeferredTurn(sessionID string, turn domain.Turn) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	sess, err := e.store.Get(ctx, sessionID)
	if err != nil || sess.ChatState == nil {
		return
	}
	sess.ChatState.AddTurn(turn, e.cfg.ContextTurns)
	if err := e.store.Save(ctx, sess); err != nil {
		e.logger.Warn("deferred turn save failed", "session", sessionID, "err", err)
	}
}
