package alerts

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/slack-go/slack"

	"github.com/eduardocaduuu/SupervisionDash/internal/service/risk"
	"github.com/eduardocaduuu/SupervisionDash/internal/util"
)

// Message fallback text plus Block Kit body of a Slack message
type Message struct {
	Text   string
	Blocks []slack.Block
}

const timestampLayout = "02/01/2006, 15:04:05"

var medals = []string{"🥇", "🥈", "🥉"}

func mrkdwn(text string) *slack.TextBlockObject {
	return slack.NewTextBlockObject(slack.MarkdownType, text, false, false)
}

func plain(text string) *slack.TextBlockObject {
	return slack.NewTextBlockObject(slack.PlainTextType, text, true, false)
}

func formatThreshold(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// ComposeRiskAlert renders a sector risk summary.
func ComposeRiskAlert(s risk.Summary, now time.Time) Message {
	atRisk := s.RiskCount > 0
	th := formatThreshold(s.Threshold)

	var msg Message
	if atRisk {
		msg.Text = fmt.Sprintf("⚠️ ALERTA: %d revendedor(es) em risco no Setor %s", s.RiskCount, s.SectorID)
	} else {
		msg.Text = fmt.Sprintf("✅ Setor %s: Nenhum revendedor em risco", s.SectorID)
	}

	header := fmt.Sprintf("✅ Setor %s", s.SectorID)
	if atRisk {
		header = fmt.Sprintf("⚠️ EM RISCO — Setor %s", s.SectorID)
	}
	blocks := []slack.Block{slack.NewHeaderBlock(plain(header))}
	if s.SectorName != nil && *s.SectorName != "" {
		blocks = append(blocks, slack.NewContextBlock("", mrkdwn(fmt.Sprintf("📍 *%s*", *s.SectorName))))
	}
	blocks = append(blocks, slack.NewDividerBlock())

	if atRisk {
		blocks = append(blocks, slack.NewSectionBlock(mrkdwn(fmt.Sprintf(
			"*%d* de *%d* revendedores estão abaixo de *%s%%* da meta de manter (9 ciclos).",
			s.RiskCount, s.TotalDealers, th)), nil, nil))
		if len(s.Top) > 0 {
			blocks = append(blocks,
				slack.NewSectionBlock(mrkdwn("*🔥 Top 5 Mais Críticos:*"), nil, nil),
				slack.NewSectionBlock(mrkdwn(dealerLines(s.Top)), nil, nil),
			)
		}
	} else {
		blocks = append(blocks, slack.NewSectionBlock(mrkdwn(fmt.Sprintf(
			"🎉 *Parabéns!* Todos os %d revendedores estão acima de %s%% da meta de manter.",
			s.TotalDealers, th)), nil, nil))
	}
	blocks = append(blocks, slack.NewDividerBlock())

	style := slack.StylePrimary
	if atRisk {
		style = slack.StyleDanger
	}
	button := slack.NewButtonBlockElement("open_dashboard", s.SectorID, plain("📊 Ver Dashboard Completo")).WithStyle(style)
	button.URL = s.DashboardURL
	blocks = append(blocks,
		slack.NewActionBlock("", button),
		slack.NewContextBlock("", mrkdwn("📅 Atualizado em: "+now.Format(timestampLayout))),
	)

	msg.Blocks = blocks
	return msg
}

func dealerLines(top []risk.Dealer) string {
	lines := make([]string, 0, len(top))
	for i, d := range top {
		medal := fmt.Sprintf("%d.", i+1)
		if i < len(medals) {
			medal = medals[i]
		}
		lines = append(lines, fmt.Sprintf("%s *%s* (%s)\n    └ %.1f%% da meta | Falta: %s",
			medal, d.Name, d.Code, d.PercentToMaintain, util.FormatBRL(d.AmountToMaintain)))
	}
	return strings.Join(lines, "\n\n")
}

// ComposeTestMessage renders the connectivity test message of a sector.
func ComposeTestMessage(sectorID string, now time.Time) Message {
	return Message{
		Text: fmt.Sprintf("🧪 Teste de alerta Slack para o Setor %s", sectorID),
		Blocks: []slack.Block{
			slack.NewHeaderBlock(plain("🧪 Teste de Alerta Slack")),
			slack.NewSectionBlock(mrkdwn(fmt.Sprintf(
				"Este é um teste do sistema de alertas para o *Setor %s*.\n\nSe você recebeu esta mensagem, o Slack está configurado corretamente! ✅",
				sectorID)), nil, nil),
			slack.NewContextBlock("", mrkdwn("⏰ Enviado em: "+now.Format(timestampLayout))),
		},
	}
}
