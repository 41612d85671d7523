package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strings"

	"github.com/cookingcapture/api/internal/domain/recipe"
	"github.com/cookingcapture/api/internal/infrastructure/config"
	"github.com/cookingcapture/api/internal/ports/outbound"
	"go.uber.org/zap"
)

const layoutTemplate = `
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <style>
        body {
            font-family: Arial, sans-serif;
            line-height: 1.6;
            color: #333;
            max-width: 600px;
            margin: 0 auto;
            padding: 20px;
        }
        .header {
            background-color: #E85D04;
            color: white;
            padding: 20px;
            text-align: center;
            border-radius: 5px 5px 0 0;
        }
        .content {
            background-color: #f9f9f9;
            padding: 30px;
            border-radius: 0 0 5px 5px;
        }
        .button {
            display: inline-block;
            background-color: #E85D04;
            color: white;
            padding: 12px 30px;
            text-decoration: none;
            border-radius: 5px;
            margin: 20px 0;
        }
        .footer {
            text-align: center;
            margin-top: 20px;
            font-size: 12px;
            color: #888;
        }
        pre {
            background-color: #eee;
            padding: 15px;
            overflow-x: auto;
            border-radius: 5px;
        }
    </style>
</head>
<body>
    <div class="header"><h1>Cooking Capture</h1></div>
    <div class="content">{{ .Body }}</div>
    <div class="footer">Cet email a été envoyé par Cooking Capture.</div>
</body>
</html>`

var layout = template.Must(template.New("layout").Parse(layoutTemplate))

// Notifier composes and sends the application's transactional email.
type Notifier struct {
	sender      outbound.EmailSender
	adminEmail  string
	frontendURL string
	logger      *zap.Logger
}

// NewNotifier creates a notifier from configuration
func NewNotifier(sender outbound.EmailSender, cfg *config.Config, logger *zap.Logger) *Notifier {
	return &Notifier{
		sender:      sender,
		adminEmail:  cfg.Admin.Email,
		frontendURL: strings.TrimRight(cfg.App.FrontendURL, "/"),
		logger:      logger.Named("notifier"),
	}
}

// SendPasswordReset emails a reset link carrying the one-hour token.
func (n *Notifier) SendPasswordReset(ctx context.Context, toEmail, name, token string) error {
	resetLink := fmt.Sprintf("%s/reset-password?token=%s", n.frontendURL, token)

	body := fmt.Sprintf(`
		<h2>Réinitialisation de votre mot de passe</h2>
		<p>Bonjour %s,</p>
		<p>Vous avez demandé la réinitialisation de votre mot de passe.
		Cliquez sur le bouton ci-dessous pour en choisir un nouveau.
		Ce lien expire dans une heure.</p>
		<p><a class="button" href="%s">Réinitialiser mon mot de passe</a></p>
		<p>Si vous n'êtes pas à l'origine de cette demande, ignorez cet email.</p>`,
		template.HTMLEscapeString(name), resetLink)

	html, err := render(body)
	if err != nil {
		return err
	}

	return n.sender.Send(ctx, outbound.EmailMessage{
		To:      []string{toEmail},
		Subject: "Réinitialisation de votre mot de passe",
		HTML:    html,
	})
}

// SendContactMessage forwards a contact-form message to the admin.
// The sender's address goes into Reply-To so the admin can answer
// directly. The subject is optional.
func (n *Notifier) SendContactMessage(ctx context.Context, fromName, fromEmail, subject, message string) error {
	var b strings.Builder
	b.WriteString("<h2>Nouveau message de contact</h2>")
	fmt.Fprintf(&b, "<p><strong>De :</strong> %s (%s)</p>",
		template.HTMLEscapeString(fromName),
		template.HTMLEscapeString(fromEmail))
	if subject != "" {
		fmt.Fprintf(&b, "<p><strong>Objet :</strong> %s</p>", template.HTMLEscapeString(subject))
	}
	fmt.Fprintf(&b, "<p>%s</p>", template.HTMLEscapeString(message))

	html, err := render(b.String())
	if err != nil {
		return err
	}

	mailSubject := fmt.Sprintf("Contact : %s", fromName)
	if subject != "" {
		mailSubject = fmt.Sprintf("Contact : %s", subject)
	}

	return n.sender.Send(ctx, outbound.EmailMessage{
		To:      []string{n.adminEmail},
		Subject: mailSubject,
		HTML:    html,
		ReplyTo: fromEmail,
	})
}

// SendDataExport emails a user their personal data export.
func (n *Notifier) SendDataExport(ctx context.Context, toEmail, name, exportJSON string) error {
	body := fmt.Sprintf(`
		<h2>Export de vos données</h2>
		<p>Bonjour %s,</p>
		<p>Voici l'export complet des données associées à votre compte :</p>
		<pre>%s</pre>`,
		template.HTMLEscapeString(name),
		template.HTMLEscapeString(exportJSON))

	html, err := render(body)
	if err != nil {
		return err
	}

	return n.sender.Send(ctx, outbound.EmailMessage{
		To:      []string{toEmail},
		Subject: "Export de vos données personnelles",
		HTML:    html,
	})
}

// RecipeSummary is the printable view of a recipe for outbound email.
type RecipeSummary struct {
	Title       string
	Description string
	PrepTime    int
	CookTime    int
	Servings    int
	Ingredients []recipe.Ingredient
	Steps       []recipe.Step
	UserName    string
}

// SendRecipe emails a full recipe to a recipient.
func (n *Notifier) SendRecipe(ctx context.Context, toEmail string, summary RecipeSummary) error {
	var b strings.Builder
	fmt.Fprintf(&b, "<h2>%s</h2>", template.HTMLEscapeString(summary.Title))
	if summary.Description != "" {
		fmt.Fprintf(&b, "<p>%s</p>", template.HTMLEscapeString(summary.Description))
	}
	fmt.Fprintf(&b, "<p>Préparation : %d min · Cuisson : %d min · %d personnes</p>",
		summary.PrepTime, summary.CookTime, summary.Servings)

	b.WriteString("<h3>Ingrédients</h3><ul>")
	for _, ing := range summary.Ingredients {
		line := strings.TrimSpace(fmt.Sprintf("%s %s %s", ing.Quantity, ing.Unit, ing.Name))
		fmt.Fprintf(&b, "<li>%s</li>", template.HTMLEscapeString(line))
	}
	b.WriteString("</ul><h3>Préparation</h3><ol>")
	for _, step := range summary.Steps {
		fmt.Fprintf(&b, "<li>%s</li>", template.HTMLEscapeString(step.Instruction))
	}
	b.WriteString("</ol>")

	html, err := render(b.String())
	if err != nil {
		return err
	}

	return n.sender.Send(ctx, outbound.EmailMessage{
		To:      []string{toEmail},
		Subject: fmt.Sprintf("Recette : %s", summary.Title),
		HTML:    html,
	})
}

// RecipeRequest is a visitor's ask for a recipe shown on the public feed.
type RecipeRequest struct {
	RecipeTitle string
	OwnerName   string
	FromName    string
	FromEmail   string
	Message     string
}

// SendRecipeRequest forwards a recipe request to the admin, with the
// requester in Reply-To.
func (n *Notifier) SendRecipeRequest(ctx context.Context, req RecipeRequest) error {
	body := fmt.Sprintf(`
		<h2>Demande de recette : %s</h2>
		<p><strong>De :</strong> %s (%s)</p>
		<p>Souhaite recevoir la recette « %s » créée par %s.</p>
		<p>%s</p>`,
		template.HTMLEscapeString(req.RecipeTitle),
		template.HTMLEscapeString(req.FromName),
		template.HTMLEscapeString(req.FromEmail),
		template.HTMLEscapeString(req.RecipeTitle),
		template.HTMLEscapeString(req.OwnerName),
		template.HTMLEscapeString(req.Message))

	html, err := render(body)
	if err != nil {
		return err
	}

	return n.sender.Send(ctx, outbound.EmailMessage{
		To:      []string{n.adminEmail},
		Subject: fmt.Sprintf("Demande de recette : %s", req.RecipeTitle),
		HTML:    html,
		ReplyTo: req.FromEmail,
	})
}

// BroadcastResult reports which recipients a broadcast failed for.
type BroadcastResult struct {
	Sent   int
	Failed []string
}

// Broadcast sends an announcement to every recipient individually.
// Failures are collected per recipient rather than aborting the run,
// so one bad address does not silence the rest.
func (n *Notifier) Broadcast(ctx context.Context, recipients []string, subject, message string) BroadcastResult {
	body := fmt.Sprintf("<h2>%s</h2><p>%s</p>",
		template.HTMLEscapeString(subject),
		template.HTMLEscapeString(message))

	html, err := render(body)
	if err != nil {
		return BroadcastResult{Failed: recipients}
	}

	result := BroadcastResult{}
	for _, to := range recipients {
		err := n.sender.Send(ctx, outbound.EmailMessage{
			To:      []string{to},
			Subject: subject,
			HTML:    html,
		})
		if err != nil {
			n.logger.Warn("broadcast delivery failed",
				zap.String("recipient", to),
				zap.Error(err),
			)
			result.Failed = append(result.Failed, to)
			continue
		}
		result.Sent++
	}
	return result
}

func render(body string) (string, error) {
	var buf bytes.Buffer
	err := layout.Execute(&buf, struct{ Body template.HTML }{Body: template.HTML(body)})
	if err != nil {
		return "", fmt.Errorf("rendering email: %w", err)
	}
	return buf.String(), nil
}
