// Package i18n holds the user-facing message catalog and the locale matching
// rules. Brazilian Portuguese is the default; English is the only other
// supported language.
package i18n

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Default is the locale used when nothing in the request matches.
const Default = "pt-BR"

var (
	PortugueseBR = language.BrazilianPortuguese
	English      = language.English

	// Supported is ordered by preference; index 0 wins ties.
	Supported = []language.Tag{PortugueseBR, English}

	matcher = language.NewMatcher(Supported)
	cat     = buildCatalog()
)

// Message keys.
const (
	Unauthorized          = "unauthorized"
	MissingFields         = "missing_fields"
	InvalidField          = "invalid_field"
	InconsistentQuantity  = "inconsistent_quantity"
	ContributionNotFound  = "contribution_not_found"
	ContributionDeleted   = "contribution_deleted"
	MissingContributionID = "missing_contribution_id"
	MissingEmail          = "missing_email"
	InvalidBody           = "invalid_body"
	InternalError         = "internal_error"
	RateLimited           = "rate_limited"

	LoginTitle      = "login_title"
	LoginIntro      = "login_intro"
	LoginAction     = "login_action"
	AuthErrorTitle  = "auth_error_title"
	AuthErrorBody   = "auth_error_body"
	AuthErrorRetry  = "auth_error_retry"
	DashboardTitle  = "dashboard_title"
	DashboardIntro  = "dashboard_intro"
	CoinDetailTitle = "coin_detail_title"
	CoinDetailIntro = "coin_detail_intro"
	SignedInAs      = "signed_in_as"
	Logout          = "logout"
	BackToDashboard = "back_to_dashboard"
)

var messages = map[string][2]string{
	Unauthorized:          {"Não autorizado", "Unauthorized"},
	MissingFields:         {"Dados obrigatórios não fornecidos", "Required data not provided"},
	InvalidField:          {"Valor inválido para o campo %s", "Invalid value for field %s"},
	InconsistentQuantity:  {"Quantidade incompatível com o valor aportado e o preço", "Quantity does not match the contributed amount and price"},
	ContributionNotFound:  {"Contribuição não encontrada ou não pertence ao usuário", "Contribution not found or not owned by the user"},
	ContributionDeleted:   {"Contribuição excluída com sucesso", "Contribution deleted successfully"},
	MissingContributionID: {"ID da contribuição não fornecido", "Contribution id not provided"},
	MissingEmail:          {"Email do usuário não disponível", "User email not available"},
	InvalidBody:           {"Corpo da requisição inválido", "Invalid request body"},
	InternalError:         {"Erro interno do servidor", "Internal server error"},
	RateLimited:           {"Muitas requisições, tente novamente em instantes", "Too many requests, try again shortly"},

	LoginTitle:      {"DCA Tracker", "DCA Tracker"},
	LoginIntro:      {"Acompanhe seus aportes recorrentes em Bitcoin e Ethereum.", "Track your recurring Bitcoin and Ethereum contributions."},
	LoginAction:     {"Entrar com %s", "Sign in with %s"},
	AuthErrorTitle:  {"Erro de autenticação", "Authentication error"},
	AuthErrorBody:   {"Não foi possível concluir o login.", "We could not complete the sign in."},
	AuthErrorRetry:  {"Tentar novamente", "Try again"},
	DashboardTitle:  {"Seus aportes", "Your contributions"},
	DashboardIntro:  {"Use a API em /api/contributions ou o cliente dca para registrar aportes.", "Use the API at /api/contributions or the dca client to record contributions."},
	CoinDetailTitle: {"Detalhes de %s", "%s details"},
	CoinDetailIntro: {"Histórico de aportes em %s (%s).", "Contribution history for %s (%s)."},
	SignedInAs:      {"Conectado como %s", "Signed in as %s"},
	Logout:          {"Sair", "Sign out"},
	BackToDashboard: {"Voltar ao painel", "Back to dashboard"},
}

func buildCatalog() *catalog.Builder {
	b := catalog.NewBuilder(catalog.Fallback(PortugueseBR))
	for key, msg := range messages {
		if err := b.SetString(PortugueseBR, key, msg[0]); err != nil {
			panic(err)
		}
		if err := b.SetString(English, key, msg[1]); err != nil {
			panic(err)
		}
	}
	return b
}

// Match returns the supported locale best matching an Accept-Language style
// preference list, or "" when nothing matches.
func Match(preference string) string {
	preference = strings.TrimSpace(preference)
	if preference == "" {
		return ""
	}
	tags, _, err := language.ParseAcceptLanguage(strings.ReplaceAll(preference, "_", "-"))
	if err != nil || len(tags) == 0 {
		return ""
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return ""
	}
	return Supported[idx].String()
}

// ForCountry picks a locale from an ISO country code.
func ForCountry(country string) string {
	switch strings.ToUpper(strings.TrimSpace(country)) {
	case "":
		return ""
	case "BR", "PT", "AO", "MZ", "CV", "GW", "ST", "TL":
		return PortugueseBR.String()
	default:
		return English.String()
	}
}

// Canonical maps any locale string to a supported one, falling back to Default.
func Canonical(locale string) string {
	if m := Match(locale); m != "" {
		return m
	}
	return Default
}

// Printer returns a printer bound to the catalog for locale.
func Printer(locale string) *message.Printer {
	tag := language.MustParse(Canonical(locale))
	return message.NewPrinter(tag, message.Catalog(cat))
}

// T translates key into locale.
func T(locale, key string, args ...any) string {
	return Printer(locale).Sprintf(key, args...)
}
