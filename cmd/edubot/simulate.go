package main

import (
	"bufio"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
)

const screenWidth = 40

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Interactive terminal USSD simulator",
	Long: `Simulates the USSD experience against a running edubot server, without
the Africa's Talking gateway. Type 'quit' to exit and 'reset' to start a
fresh session.`,
	Run: func(cmd *cobra.Command, args []string) {
		baseURL, _ := cmd.Flags().GetString("url")
		phone, _ := cmd.Flags().GetString("phone")

		sim := &simulator{
			baseURL:     baseURL,
			phoneNumber: phone,
			serviceCode: "*384*123#",
			sessionID:   newSimSessionID(),
			output:      termenv.NewOutput(os.Stdout),
		}
		sim.run()
	},
}

func init() {
	rootCmd.AddCommand(simulateCmd)
	simulateCmd.Flags().String("url", "http://localhost:8000", "Base URL of the edubot server")
	simulateCmd.Flags().String("phone", "+26771234567", "Phone number to simulate")
}

type simulator struct {
	baseURL     string
	phoneNumber string
	serviceCode string
	sessionID   string
	history     []string
	output      *termenv.Output
}

func newSimSessionID() string {
	return "sim-" + uuid.NewString()[:8]
}

// send posts one exchange with the cumulative navigation path.
func (s *simulator) send(input string) (string, error) {
	if input != "" {
		s.history = append(s.history, input)
	}

	resp, err := http.PostForm(s.baseURL+"/ussd/callback", url.Values{
		"sessionId":   {s.sessionID},
		"phoneNumber": {s.phoneNumber},
		"serviceCode": {s.serviceCode},
		"text":        {strings.Join(s.history, "*")},
	})
	if err != nil {
		return "", fmt.Errorf("cannot reach server (is 'edubot serve' running?): %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// display renders the USSD screen box and reports whether the session is
// still active.
func (s *simulator) display(response string) bool {
	isEnd := strings.HasPrefix(response, "END ")
	content := strings.TrimPrefix(strings.TrimPrefix(response, "CON "), "END ")

	border := s.output.String(
		"+" + strings.Repeat("-", screenWidth) + "+").Foreground(s.output.Color("8"))

	fmt.Println()
	fmt.Println(border)
	s.printLine(fmt.Sprintf(" USSD - %s", s.serviceCode))
	fmt.Println(border)
	for _, line := range strings.Split(content, "\n") {
		for len(line) > screenWidth-2 {
			s.printLine(" " + line[:screenWidth-2])
			line = line[screenWidth-2:]
		}
		s.printLine(" " + line)
	}
	fmt.Println(border)

	if isEnd {
		fmt.Println(s.output.String("[Session Ended]").Foreground(s.output.Color("3")))
		return false
	}
	return true
}

func (s *simulator) printLine(line string) {
	if len(line) > screenWidth {
		line = line[:screenWidth]
	}
	fmt.Printf("|%-*s|\n", screenWidth, line)
}

func (s *simulator) run() {
	title := s.output.String("USSD SIMULATOR - EduBot").Bold()
	fmt.Println(title)
	fmt.Println("Type 'quit' to exit, 'reset' to restart")

	response, err := s.send("")
	if err != nil {
		fmt.Println(err)
		return
	}
	active := s.display(response)

	scanner := bufio.NewScanner(os.Stdin)
	for active {
		fmt.Print("\nEnter selection: ")
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())

		switch input {
		case "":
			continue
		case "quit":
			fmt.Println("Goodbye!")
			return
		case "reset":
			s.sessionID = newSimSessionID()
			s.history = nil
			input = ""
		}

		response, err := s.send(input)
		if err != nil {
			fmt.Println(err)
			return
		}
		active = s.display(response)
	}

	fmt.Println("\n[Simulator ended. Check server logs for SMS output]")
}
