// Package notify pushes plan outcomes to an XMPP contact when configured.
package notify

import (
	"crypto/tls"
	"errors"
	"fmt"
	"strings"

	"github.com/mattn/go-xmpp"
	log "github.com/sirupsen/logrus"

	"github.com/passage-nav/console/plan"
)

type Config struct {
	Host     string
	Jid      string
	Password string
	To       string
}

type Notifier struct {
	Config Config
}

// Enabled reports whether enough configuration is present to send anything.
func (n Notifier) Enabled() bool {
	return len(n.Config.Jid) > 0 && len(n.Config.Password) > 0 && len(n.Config.To) > 0
}

func serverName(jid string) string {
	return strings.Split(jid, "@")[1]
}

func (n Notifier) Send(message string) error {
	if !n.Enabled() {
		return errors.New("missing xmpp config")
	}

	host := n.Config.Host
	if len(host) == 0 {
		host = serverName(n.Config.Jid)
	}

	xmpp.DefaultConfig = &tls.Config{
		InsecureSkipVerify: true,
	}

	options := xmpp.Options{
		Host:     host,
		User:     n.Config.Jid,
		Password: n.Config.Password,
		NoTLS:    true,
		StartTLS: true,
		Debug:    false,
		Session:  false,
		Status:   "xa",
	}

	talk, err := options.NewClient()
	if err != nil {
		log.Warnf("xmpp client: %s", err.Error())
		return err
	}

	_, err = talk.Send(xmpp.Chat{Remote: n.Config.To, Type: "chat", Text: message})
	return err
}

// PlanSucceeded formats and sends a completion notice.
func (n Notifier) PlanSucceeded(result *plan.RouteResult) {
	if !n.Enabled() {
		return
	}
	msg := fmt.Sprintf("Passage planned: %.1f nm via %s (%d points)", result.DistanceNm, result.Algo, len(result.Points))
	if err := n.Send(msg); err != nil {
		log.Warnf("Plan notification not sent: %v", err)
	}
}

// PlanFailed sends the failure detail.
func (n Notifier) PlanFailed(detail string) {
	if !n.Enabled() {
		return
	}
	if err := n.Send("Passage planning failed: " + detail); err != nil {
		log.Warnf("Failure notification not sent: %v", err)
	}
}
