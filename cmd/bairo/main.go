package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	contractx "github.com/bairolabs/bairo/bot/contract"
	flowx "github.com/bairolabs/bairo/bot/flow"
	gatewayx "github.com/bairolabs/bairo/bot/gateway"
	storex "github.com/bairolabs/bairo/bot/store"
	configx "github.com/bairolabs/bairo/pkg/config"
	logx "github.com/bairolabs/bairo/pkg/logger"
)

const welcome = "Welcome to the CADD Center Assistance! How can I help you today?"

// agentFallback is shown when a free-form question cannot be answered
// because the responder is missing or unavailable.
const agentFallback = "I'm Bairo, the CADD Center assistant. I can help you with course inquiries. Are you interested in learning about our courses?"

type AppConfig struct {
	JSONStorePath  string        `envconfig:"JSON_STORE_PATH" split_words:"true" default:"inquiry_database.json"`
	TypingDelay    time.Duration `envconfig:"TYPING_DELAY" split_words:"true" default:"1s"`
	GatewayEnabled bool          `envconfig:"GATEWAY_ENABLED" split_words:"true" default:"false"`
}

func main() {
	logCfg := configx.MustNew[logx.Config]("LOG")
	logx.Init(*logCfg)

	appCfg := configx.MustNew[AppConfig]("")

	store, err := storex.NewJSONFile(appCfg.JSONStorePath)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize store")
	}

	// The console greets back on a bare hello, unlike the web widget.
	opts := []flowx.Option{flowx.WithGreetingTriggers("hi", "hello")}

	var responder contractx.Responder
	if appCfg.GatewayEnabled {
		gwCfg := configx.MustNew[gatewayx.Config]("GATEWAY")
		client, err := gatewayx.NewClient(*gwCfg)
		if err != nil {
			log.Fatal().Err(err).Msg("initialize gateway")
		}
		responder = client
		opts = append(opts, flowx.WithResponder(responder))
	}

	flow, err := flowx.New(store, opts...)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize flow")
	}

	run(flow, responder, appCfg.TypingDelay)
}

func run(flow *flowx.Flow, responder contractx.Responder, delay time.Duration) {
	ctx := context.Background()

	fmt.Println()
	fmt.Println(strings.Repeat("=", 50))
	fmt.Println("CADD Center Assistant Bot - Bairo")
	fmt.Println(strings.Repeat("=", 50))
	typeOut(welcome, delay)

	session := contractx.NewSession()
	history := []contractx.Message{{Role: contractx.RoleAssistant, Content: welcome}}

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("\nYou: ")
		if !scanner.Scan() {
			return
		}
		utterance := strings.TrimSpace(scanner.Text())
		if utterance == "" {
			continue
		}
		history = append(history, contractx.Message{Role: contractx.RoleUser, Content: utterance})

		res, err := flow.Advance(ctx, session, utterance)
		if err != nil {
			log.Error().Err(err).Msg("advance failed")
		}

		reply := res.Message

		// A greeting that matched no trigger is a free-form question;
		// hand it to the responder when one is configured.
		if session.Step == contractx.StepGreeting && res.Next == contractx.StepGreeting && responder != nil {
			if answer, rerr := responder.Respond(ctx, history); rerr == nil {
				reply = answer
			} else {
				log.Warn().Err(rerr).Msg("fallback responder unavailable")
				reply = agentFallback
			}
		}

		typeOut(reply, delay)
		history = append(history, contractx.Message{Role: contractx.RoleAssistant, Content: reply})

		session = contractx.Session{Step: res.Next, Draft: res.Draft}
		if res.Next == contractx.StepComplete {
			return
		}
	}
}

// typeOut mimics a human operator: a short typing indicator, then the
// reply, one prefixed line per paragraph.
func typeOut(text string, delay time.Duration) {
	if delay > 0 {
		fmt.Print("Bairo is typing...\r")
		time.Sleep(delay)
		fmt.Print(strings.Repeat(" ", 20) + "\r")
	}
	for _, line := range strings.Split(text, "\n") {
		fmt.Println("Bairo: " + line)
	}
}
