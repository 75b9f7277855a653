package main

import (
	"context"

	"agentsite-backend/cmd/profile-cli/commands"
	"agentsite-backend/lib/serviceutil"
	"agentsite-backend/lib/telemetry"
)

func main() {
	ctx := serviceutil.SignalContext()

	t, err := telemetry.SetupFromEnv(ctx, "profile-cli")
	if err == nil {
		defer t.Shutdown(context.Background())
		telemetry.InstrumentPerfStats(ctx)
	}
	telemetry.InitSlog(true)

	commands.ExecuteContext(ctx)
}
