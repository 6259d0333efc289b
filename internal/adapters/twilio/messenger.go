package twilio

import (
	"fmt"
	"time"

	"github.com/ClareAI/astra-reserve-service/internal/services/tenant"
	"github.com/ClareAI/astra-reserve-service/pkg/logger"
	"github.com/twilio/twilio-go"
	twclient "github.com/twilio/twilio-go/client"
	api "github.com/twilio/twilio-go/rest/api/v2010"
	"go.uber.org/zap"
)

// gatewayTimeout bounds every outbound gateway call.
const gatewayTimeout = 10 * time.Second

// Messenger sends WhatsApp messages through the messaging gateway. The run
// coordinator and the menu-PDF tool both reply through it.
type Messenger interface {
	SendText(creds *tenant.Credentials, from, to, body string) error
	SendMedia(creds *tenant.Credentials, from, to, mediaURL string) error
}

// Service implements Messenger against the Twilio Messages API with per-tenant
// credentials.
type Service struct{}

// NewService creates a messenger service.
func NewService() *Service {
	return &Service{}
}

// SendText sends a plain text message.
func (s *Service) SendText(creds *tenant.Credentials, from, to, body string) error {
	params := &api.CreateMessageParams{}
	params.SetFrom(whatsappAddress(from))
	params.SetTo(whatsappAddress(to))
	params.SetBody(body)
	return s.send(creds, params, to)
}

// SendMedia sends a media message pointing at a publicly reachable URL.
func (s *Service) SendMedia(creds *tenant.Credentials, from, to, mediaURL string) error {
	params := &api.CreateMessageParams{}
	params.SetFrom(whatsappAddress(from))
	params.SetTo(whatsappAddress(to))
	params.SetMediaUrl([]string{mediaURL})
	return s.send(creds, params, to)
}

func (s *Service) send(creds *tenant.Credentials, params *api.CreateMessageParams, to string) error {
	if creds.GatewaySID == "" || creds.GatewayToken == "" {
		return fmt.Errorf("messenger: tenant has no gateway credentials")
	}

	base := &twclient.Client{Credentials: twclient.NewCredentials(creds.GatewaySID, creds.GatewayToken)}
	base.SetTimeout(gatewayTimeout)
	restClient := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: creds.GatewaySID,
		Password: creds.GatewayToken,
		Client:   base,
	})

	msg, err := restClient.Api.CreateMessage(params)
	if err != nil {
		logger.Base().Error("gateway send failed",
			zap.String("to", to),
			zap.Error(err))
		return err
	}
	if msg.Sid != nil {
		logger.Base().Info("gateway message sent",
			zap.String("to", to),
			zap.String("message_sid", *msg.Sid))
	}
	return nil
}

// whatsappAddress applies the transport prefix the gateway expects.
func whatsappAddress(addr string) string {
	if addr == "" {
		return addr
	}
	if len(addr) >= 9 && addr[:9] == "whatsapp:" {
		return addr
	}
	return "whatsapp:" + addr
}
