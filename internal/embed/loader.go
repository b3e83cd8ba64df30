// Package embed generates the loader script host pages include and the
// embed snippet handed to dashboard users.
package embed

import (
	"fmt"
	"net/url"
	"strings"
	"text/template"

	"github.com/sitewise-ai/sitewise/internal/domain"
)

// loaderTemplate is the self-contained script served from /widget.js.
// The global guard flag makes inclusion idempotent: a page that embeds
// the snippet twice still initializes exactly once. Resize messages are
// accepted strictly from the widget origin, and host commands are
// posted back targeted at that same origin.
var loaderTemplate = template.Must(template.New("loader").Parse(`(function() {
  if (window.__sitewiseLoaded) return;
  window.__sitewiseLoaded = true;

  var widgetId = {{.WidgetID}};
  var baseUrl = {{.BaseURL}};

  var container = document.createElement('div');
  container.id = 'sitewise-widget-container';
  container.style.cssText = 'position:fixed;bottom:20px;right:20px;z-index:2147483647;pointer-events:none;';
  document.body.appendChild(container);

  var iframe = document.createElement('iframe');
  iframe.id = 'sitewise-widget-iframe';
  iframe.src = baseUrl + '/widget/' + widgetId;
  iframe.style.cssText = 'border:none;width:{{.Width}}px;height:{{.Height}}px;background:transparent !important;background-color:transparent !important;pointer-events:auto;';
  iframe.allow = 'microphone';
  iframe.setAttribute('allowtransparency', 'true');
  iframe.setAttribute('frameborder', '0');
  iframe.setAttribute('scrolling', 'no');
  container.appendChild(iframe);

  window.addEventListener('message', function(event) {
    if (event.origin !== baseUrl) return;

    var data = event.data;
    if (data && data.type === 'sitewise-resize') {
      iframe.style.width = data.width + 'px';
      iframe.style.height = data.height + 'px';
    }
  });

  window.SiteWise = {
    open: function() {
      iframe.contentWindow.postMessage({ type: 'sitewise-open' }, baseUrl);
    },
    close: function() {
      iframe.contentWindow.postMessage({ type: 'sitewise-close' }, baseUrl);
    },
    toggle: function() {
      iframe.contentWindow.postMessage({ type: 'sitewise-toggle' }, baseUrl);
    }
  };
})();
`))

type loaderData struct {
	WidgetID string
	BaseURL  string
	Width    int
	Height   int
}

// LoaderScript renders the loader for a widget. The widget ID is
// required; integration mistakes must fail loudly at embed time, never
// once the script is running on a host page.
func LoaderScript(widgetID, baseURL string) (string, error) {
	if widgetID == "" {
		return "", domain.ErrInvalidRequest
	}
	base, err := normalizeBase(baseURL)
	if err != nil {
		return "", err
	}

	// The frame starts at the teaser footprint so shadows and the intro
	// bubble aren't clipped before the first resize message lands.
	var b strings.Builder
	err = loaderTemplate.Execute(&b, loaderData{
		WidgetID: jsString(widgetID),
		BaseURL:  jsString(base),
		Width:    300,
		Height:   180,
	})
	if err != nil {
		return "", fmt.Errorf("failed to render loader script: %w", err)
	}
	return b.String(), nil
}

// EmbedSnippet returns the script tag dashboard users paste into their
// site.
func EmbedSnippet(widgetID, baseURL string) (string, error) {
	if widgetID == "" {
		return "", domain.ErrInvalidRequest
	}
	base, err := normalizeBase(baseURL)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(`<script src="%s/widget.js?id=%s" async></script>`,
		base, url.QueryEscape(widgetID)), nil
}

// normalizeBase reduces the configured base URL to a bare origin, the
// form postMessage origin comparison requires.
func normalizeBase(baseURL string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("invalid base url %q", baseURL)
	}
	return u.Scheme + "://" + u.Host, nil
}

// jsString emits a double-quoted JS string literal with the characters
// that could break out of the literal escaped.
func jsString(s string) string {
	r := strings.NewReplacer(
		`\`, `\\`,
		`"`, `\"`,
		"\n", `\n`,
		"\r", `\r`,
		"<", `\u003c`,
		">", `\u003e`,
	)
	return `"` + r.Replace(s) + `"`
}
