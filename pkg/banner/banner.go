package banner

import (
	"fmt"

	"github.com/nft-socials/nft-socials-app-sub000/pkg/config"
)

const banner = `
███████╗ ██████╗  ██████╗██╗ █████╗ ██╗     ███████╗██████╗
██╔════╝██╔═══██╗██╔════╝██║██╔══██╗██║     ██╔════╝██╔══██╗
███████╗██║   ██║██║     ██║███████║██║     ███████╗██║  ██║
╚════██║██║   ██║██║     ██║██╔══██║██║     ╚════██║██║  ██║
███████║╚██████╔╝╚██████╗██║██║  ██║███████╗███████║██████╔╝
╚══════╝ ╚═════╝  ╚═════╝╚═╝╚═╝  ╚═╝╚══════╝╚══════╝╚═════╝
`

// Print writes the startup banner with the effective runtime info so
// operators can verify what configuration the process picked up.
func Print(eff config.Effective, version string) {
	fmt.Print(banner)
	fmt.Println("== Config =====================================================")
	fmt.Printf("Listen:   %s\n", eff.Addr)
	fmt.Printf("DB Path:  %s\n", eff.DBPath)
	if version != "" {
		fmt.Printf("Version:  %s\n", version)
	}
	fmt.Printf("Config:   %s\n", eff.Source)

	fmt.Println("\n== Endpoints ==================================================")
	fmt.Println("POST /v1/messages                     - Send a message (recipient, content, kind)")
	fmt.Println("GET  /v1/conversations                - List your conversations with unread counts")
	fmt.Println("GET  /v1/conversations/{id}/messages  - Conversation history (?limit=<n>)")
	fmt.Println("POST /v1/conversations/{id}/read      - Mark conversation read")
	fmt.Println("POST /v1/reactions/toggle             - Like/unlike a message, post or asset")
	fmt.Println("GET  /v1/notifications                - List notifications (?limit=<n>)")
	fmt.Println("GET  /v1/unread                       - Unread counts snapshot")
	fmt.Println("GET  /v1/ws/{messages/{id},notifications,unread} - Live feeds")

	fmt.Println("\n== Production? =================================================")
	be := 0
	fe := 0
	if eff.Config != nil {
		be = len(eff.Config.Security.APIKeys.Backend)
		fe = len(eff.Config.Security.APIKeys.Frontend)
	}
	if be > 0 {
		fmt.Printf("- Backend API keys: OK (%d)\n", be)
	} else {
		fmt.Println("- Backend API keys: MISSING (required for marketplace event emits)")
	}
	if fe > 0 {
		fmt.Printf("- Frontend API keys: OK (%d)\n", fe)
	} else {
		fmt.Println("- Frontend API keys: MISSING (required for client access)")
	}
	if eff.Config != nil && eff.Config.Security.APIKeys.AllowUnauth {
		fmt.Println("- Unauthenticated access: ALLOWED (development mode)")
	}

	tlsOK := eff.Config != nil && eff.Config.Server.TLS.CertFile != "" && eff.Config.Server.TLS.KeyFile != ""
	if tlsOK {
		fmt.Println("- TLS: configured")
	} else {
		fmt.Println("- TLS: unconfigured")
	}

	ret := false
	if eff.Config != nil {
		ret = eff.Config.Retention.Enabled
	}
	if ret {
		cron := eff.Config.Retention.Cron
		if cron == "" {
			cron = "0 2 * * *"
		}
		fmt.Printf("- Retention: enabled (cron=%s period=%s)\n", cron, eff.Config.Retention.Period.Duration())
	} else {
		fmt.Println("- Retention: disabled")
	}

	fmt.Println("\n== Logs: =================================================")
}
