package widget

import (
	"bytes"
	"html/template"

	"github.com/sitewise-ai/sitewise/internal/domain"
	widgetruntime "github.com/sitewise-ai/sitewise/internal/widget"
)

// emptyWidgetPage is served when settings cannot be resolved: a
// transparent document with nothing in it.
const emptyWidgetPage = `<!DOCTYPE html>
<html><head><meta charset="utf-8"><style>html,body{background:transparent !important;margin:0}</style></head><body></body></html>`

// widgetPageTemplate hosts the widget inside the loader's iframe. The
// page paints the server-rendered closed state immediately, then hands
// control to the live session: render frames replace the markup, resize
// frames are relayed to the parent window, and parent commands are
// forwarded into the session together with their origin.
var widgetPageTemplate = template.Must(template.New("widget-page").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<style>
html, body { background: transparent !important; margin: 0; font-family: system-ui, sans-serif; }
.sw-widget { z-index: 2147483647; }
.sw-card, .sw-panel-surface, .sw-surface { display: flex; flex-direction: column; background: #fff; border: 1px solid #e5e7eb; border-radius: 16px; box-shadow: 0 12px 32px rgba(0,0,0,.18); overflow: hidden; }
.sw-card { width: 348px; height: 500px; }
.sw-panel-surface { width: 348px; height: 600px; }
.sw-surface { width: 388px; height: 560px; }
.sw-header { display: flex; align-items: center; justify-content: space-between; padding: 10px 14px; }
.sw-header-minimal { background: #f9fafb; color: #111827; border-bottom: 1px solid #f3f4f6; }
.sw-title { font-size: 14px; font-weight: 600; }
.sw-close, .sw-teaser-close { border: none; background: transparent; color: inherit; font-size: 16px; cursor: pointer; }
.sw-messages { flex: 1; overflow-y: auto; padding: 14px; background: #f9fafb; }
.sw-empty { text-align: center; color: #6b7280; font-size: 13px; padding: 28px 8px; }
.sw-hint { font-size: 11px; margin-top: 6px; }
.sw-row { display: flex; margin-bottom: 10px; }
.sw-row-user { justify-content: flex-end; }
.sw-row-assistant { justify-content: flex-start; }
.sw-msg { max-width: 80%; padding: 8px 12px; border-radius: 14px; font-size: 13px; white-space: pre-wrap; }
.sw-msg-assistant { background: #fff; color: #111827; box-shadow: 0 1px 2px rgba(0,0,0,.08); }
.sw-typing { display: inline-flex; gap: 5px; background: #fff; padding: 10px 14px; border-radius: 14px; box-shadow: 0 1px 2px rgba(0,0,0,.08); }
.sw-dot { width: 7px; height: 7px; border-radius: 50%; background: #9ca3af; animation: sw-bounce 1s infinite; }
.sw-dot:nth-child(2) { animation-delay: .15s; }
.sw-dot:nth-child(3) { animation-delay: .3s; }
@keyframes sw-bounce { 0%, 80%, 100% { transform: translateY(0); } 40% { transform: translateY(-4px); } }
.sw-input-row { display: flex; gap: 8px; padding: 12px; border-top: 1px solid #e5e7eb; background: #fff; }
.sw-input { flex: 1; border: none; background: #f3f4f6; border-radius: 10px; padding: 10px 12px; font-size: 13px; outline: none; }
.sw-send { border: none; border-radius: 10px; padding: 0 16px; font-size: 13px; cursor: pointer; }
.sw-send[disabled] { opacity: .5; cursor: default; }
.sw-launcher { width: 56px; height: 56px; border: 4px solid #fff; box-shadow: 0 6px 18px rgba(0,0,0,.22); font-size: 22px; cursor: pointer; }
.sw-launcher-round { border-radius: 50%; }
.sw-launcher-square { border-radius: 14px; }
.sw-teaser { position: absolute; bottom: 70px; min-width: 180px; max-width: 260px; background: #fff; border: 1px solid #e5e7eb; border-radius: 12px; box-shadow: 0 8px 24px rgba(0,0,0,.16); padding: 10px 28px 10px 12px; }
.sw-teaser-right { right: 0; }
.sw-teaser-left { left: 0; }
.sw-teaser-close { position: absolute; top: 4px; right: 6px; color: #6b7280; }
.sw-teaser-text { margin: 0; font-size: 13px; font-weight: 500; color: #111827; }
.sw-prompt-bar { display: flex; align-items: center; gap: 8px; width: 300px; background: #fff; border: 2px solid; border-radius: 14px; padding: 8px 12px; box-shadow: 0 8px 24px rgba(0,0,0,.16); }
.sw-spark { display: inline-flex; align-items: center; justify-content: center; width: 28px; height: 28px; border-radius: 8px; }
</style>
</head>
<body>
<div id="sitewise-root">{{.Markup}}</div>
<script>
(function() {
  var root = document.getElementById('sitewise-root');
  var proto = location.protocol === 'https:' ? 'wss://' : 'ws://';
  var sock = new WebSocket(proto + location.host + '/api/widget/session/' + {{.WidgetID}});
  var here = location.origin;

  function send(frame) {
    if (sock.readyState === WebSocket.OPEN) sock.send(JSON.stringify(frame));
  }

  sock.onmessage = function(e) {
    var msg;
    try { msg = JSON.parse(e.data); } catch (err) { return; }
    if (msg.type === 'sitewise-resize') {
      window.parent.postMessage({ type: 'sitewise-resize', width: msg.width, height: msg.height }, '*');
    } else if (msg.type === 'sitewise-render') {
      var field = root.querySelector('[data-widget-input]');
      var hadFocus = field && document.activeElement === field;
      root.innerHTML = msg.html;
      var list = root.querySelector('[data-widget-messages]');
      if (list) list.scrollTop = list.scrollHeight;
      field = root.querySelector('[data-widget-input]');
      if (field && hadFocus) {
        field.focus();
        field.setSelectionRange(field.value.length, field.value.length);
      }
    }
  };

  // Commands from the hosting parent page travel postMessage -> session
  // with the sender's origin attached; the controller decides whether
  // that origin is trusted.
  window.addEventListener('message', function(event) {
    var d = event.data;
    if (!d || typeof d.type !== 'string') return;
    if (d.type === 'sitewise-open' || d.type === 'sitewise-close' || d.type === 'sitewise-toggle') {
      send({ type: d.type, origin: event.origin });
    }
  });

  root.addEventListener('click', function(event) {
    var t = event.target.closest('[data-widget-open],[data-widget-close],[data-widget-dismiss],[data-widget-send]');
    if (!t) return;
    if (t.hasAttribute('data-widget-open')) send({ type: 'sitewise-open', origin: here });
    else if (t.hasAttribute('data-widget-close')) send({ type: 'sitewise-close', origin: here });
    else if (t.hasAttribute('data-widget-dismiss')) send({ type: 'sitewise-dismiss' });
    else if (t.hasAttribute('data-widget-send')) send({ type: 'sitewise-send' });
  });

  root.addEventListener('input', function(event) {
    if (event.target.matches('[data-widget-input]')) {
      send({ type: 'sitewise-prompt', value: event.target.value });
    }
  });

  root.addEventListener('keydown', function(event) {
    if (event.key !== 'Enter' || event.shiftKey || event.ctrlKey || event.altKey || event.metaKey) return;
    if (event.target.matches('[data-widget-input]') && event.target.value.trim() !== '') {
      send({ type: 'sitewise-send' });
    }
  });
})();
</script>
</body>
</html>`))

type widgetPageData struct {
	WidgetID string
	Markup   template.HTML
}

// renderWidgetPage paints the initial closed state server-side so the
// widget appears before the session connects.
func renderWidgetPage(widgetID string, settings *domain.WidgetSettings) ([]byte, error) {
	tmpl := domain.ParseTemplate(settings.WidgetTemplate)
	renderer := widgetruntime.RendererFor(tmpl)

	markup := renderer.Render(widgetruntime.View{
		HeaderTitle:       settings.HeaderTitle,
		WelcomeMessage:    settings.WelcomeMessage,
		PrimaryColor:      settings.PrimaryColor,
		TextColor:         settings.TextColor,
		Position:          domain.ParsePosition(settings.Position),
		ShowBubbleMessage: true,
	}).HTML()

	var buf bytes.Buffer
	err := widgetPageTemplate.Execute(&buf, widgetPageData{
		WidgetID: widgetID,
		Markup:   template.HTML(markup),
	})
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
