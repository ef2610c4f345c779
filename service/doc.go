// Package service opens chat sessions against one OpenAI-compatible
// endpoint. A Service resolves the base URL once, builds the shared
// transport (with its middleware chain) and hands out independent sessions.
//
//	svc, err := service.New(apiKey, "https://api.openai.com/v1/chat/completions")
//	if err != nil {
//		return err
//	}
//	chat := svc.Connect("gpt-4o-mini")
//	reply, err := chat.Send(ctx, message.User("Hello"))
package service
