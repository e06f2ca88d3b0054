package chat

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"libralink/internal/platform/genai"
)

// LLM is satisfied by genai.Client.
type LLM interface {
	Chat(ctx context.Context, system string, history []genai.Message) (string, error)
}

type History interface {
	Load(ctx context.Context, userID string) ([]genai.Message, error)
	Append(ctx context.Context, userID string, msgs ...genai.Message) error
	Clear(ctx context.Context, userID string) error
}

type Service struct {
	llm     LLM
	tools   *Tools
	history History
	logger  *zap.Logger
}

// NewService builds the assistant. A nil llm makes Reply return
// genai.ErrUnavailable.
func NewService(llm LLM, tools *Tools, history History, logger *zap.Logger) *Service {
	return &Service{llm: llm, tools: tools, history: history, logger: logger}
}

func (s *Service) Available() bool {
	return s.llm != nil
}

// Reply answers message for userID. Commands the model writes are run and
// their results fed back until the model answers without commands or
// MaxRounds model calls have been made.
func (s *Service) Reply(ctx context.Context, userID, message string) (Reply, error) {
	if s.llm == nil {
		return Reply{}, genai.ErrUnavailable
	}
	message = strings.TrimSpace(message)
	if message == "" {
		return Reply{}, ErrEmptyMessage
	}

	past, err := s.history.Load(ctx, userID)
	if err != nil {
		s.logger.Warn("chat history unavailable", zap.String("user_id", userID), zap.Error(err))
		past = nil
	}

	convo := append(past, genai.Message{Role: genai.RoleUser, Text: message})
	executed := []ExecutedCommand{}
	var answer string

	for round := 1; ; round++ {
		answer, err = s.llm.Chat(ctx, systemPrompt, convo)
		if err != nil {
			return Reply{}, err
		}
		cmds := ParseCommands(answer)
		if len(cmds) == 0 {
			break
		}
		if round == MaxRounds {
			s.logger.Debug("chat round limit reached", zap.String("user_id", userID), zap.Int("pending", len(cmds)))
			answer = StripCommands(answer)
			break
		}

		results, ran := s.runCommands(ctx, userID, cmds)
		executed = append(executed, ran...)
		convo = append(convo,
			genai.Message{Role: genai.RoleModel, Text: answer},
			genai.Message{Role: genai.RoleUser, Text: results},
		)
	}

	if err := s.history.Append(ctx, userID,
		genai.Message{Role: genai.RoleUser, Text: message},
		genai.Message{Role: genai.RoleModel, Text: answer},
	); err != nil {
		s.logger.Warn("chat history not saved", zap.String("user_id", userID), zap.Error(err))
	}

	return Reply{Message: answer, Commands: executed}, nil
}

// runCommands executes cmds and renders them as one TOOL RESULTS message.
// A failing command becomes an error line; the others still run.
func (s *Service) runCommands(ctx context.Context, userID string, cmds []Command) (string, []ExecutedCommand) {
	var sb strings.Builder
	sb.WriteString(toolResultsHead)
	ran := make([]ExecutedCommand, 0, len(cmds))

	for _, cmd := range cmds {
		ec := ExecutedCommand{Name: cmd.Name, Argument: cmd.Argument}
		sb.WriteString("\n")
		sb.WriteString(cmd.String())
		sb.WriteString("\n")

		out, err := s.tools.Run(ctx, userID, cmd)
		if err != nil {
			s.logger.Info("chat command failed", zap.String("command", cmd.Name), zap.Error(err))
			ec.Error = err.Error()
			sb.WriteString("error: ")
			sb.WriteString(err.Error())
		} else {
			ec.Output = out
			sb.WriteString(out)
		}
		ran = append(ran, ec)
	}
	return sb.String(), ran
}

func (s *Service) History(ctx context.Context, userID string) ([]genai.Message, error) {
	return s.history.Load(ctx, userID)
}

func (s *Service) ClearHistory(ctx context.Context, userID string) error {
	return s.history.Clear(ctx, userID)
}
