package server

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"github.com/user/blocksched/pkg/controller"
)

// PageVars contains variables for the interactive page template.
type PageVars struct {
	Toolbar controller.Toolbar
	SVG     template.HTML
	Width   int
	Height  int
	Empty   bool

	// Scroll is applied once after load.
	Scroll *scrollRequest

	// ShrinkInMs schedules a redraw for a deferred shrink. Zero means none.
	ShrinkInMs int64
}

func newPageVars(tb controller.Toolbar, svg []byte, width, height int, resp stateResponse, now time.Time) PageVars {
	vars := PageVars{
		Toolbar: tb,
		SVG:     template.HTML(svg),
		Width:   width,
		Height:  height,
		Scroll:  resp.Scroll,
		Empty:   resp.Arrangement.Empty,
	}
	if resp.ShrinkAt != nil {
		vars.ShrinkInMs = max(resp.ShrinkAt.Sub(now).Milliseconds(), 1)
	}
	return vars
}

var pageTemplate = template.Must(template.New("page").Parse(pageHTML))

// renderPage renders the schedule page with its toolbar.
func renderPage(vars PageVars) ([]byte, error) {
	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, vars); err != nil {
		return nil, fmt.Errorf("execute template: %w", err)
	}
	return buf.Bytes(), nil
}

const pageHTML = `<!DOCTYPE html>
<html>
  <head>
    <meta charset="utf-8">
    <meta name="viewport" content="width=device-width, initial-scale=1">
    <title>Block schedule</title>
    <style>
      body { margin: 0; font-family: system-ui, sans-serif; }
      nav { display: flex; flex-wrap: wrap; gap: 4px; padding: 8px; border-bottom: 1px solid #ddd; }
      nav button { border: 1px solid #bbb; background: #fff; padding: 4px 10px; border-radius: 4px; cursor: pointer; }
      nav button.active { background: #222; color: #fff; }
      nav button.off { opacity: 0.45; }
      nav button.unavailable { border-style: dashed; }
      nav .sep { width: 16px; }
      #schedule { overflow-x: auto; overflow-y: hidden; }
      #schedule svg { display: block; }
      .empty { padding: 24px; color: #888; }
    </style>
  </head>
  <body>
    <nav>
      {{range .Toolbar.Days}}<button class="day{{if .Active}} active{{end}}" data-day="{{.ID}}">{{.Name}}</button>{{end}}
      <span class="sep"></span>
      {{range .Toolbar.Stages}}<button class="stage{{if not .Enabled}} off{{end}}{{if not .Available}} unavailable{{end}}" data-stage="{{.ID}}" style="border-left: 6px solid {{.Colour}}">{{.Name}}</button>{{end}}
      {{if .Toolbar.NowAvailable}}<span class="sep"></span><button id="now">Now</button>{{end}}
    </nav>
    <div id="schedule">{{if .Empty}}<div class="empty">No stages selected</div>{{else}}{{.SVG}}{{end}}</div>
    <script>
      const area = document.getElementById("schedule");
      const post = (path, body) => fetch(path, {
        method: "POST",
        headers: {"Content-Type": "application/json"},
        body: body ? JSON.stringify(body) : null,
      });
      const reload = () => location.reload();
      const redraw = () => fetch("/schedule.svg").then(r => r.text()).then(svg => {
        if (area.querySelector("svg")) area.innerHTML = svg;
      });
      const scrollArea = req => {
        area.scrollLeft = req.centre ? req.offset - area.clientWidth / 2 : req.offset;
      };
      // scroll requests in an action response are applied after the reload
      const act = path => post(path).then(r => r.ok ? r.json() : {}).then(body => {
        const req = body.scroll || (body.state && body.state.scroll);
        if (req) sessionStorage.setItem("scroll", JSON.stringify(req));
        reload();
      });

      document.querySelectorAll("[data-day]").forEach(b =>
        b.addEventListener("click", () => act("/api/day/" + encodeURIComponent(b.dataset.day))));
      document.querySelectorAll("[data-stage]").forEach(b =>
        b.addEventListener("click", () => act("/api/stages/" + encodeURIComponent(b.dataset.stage) + "/toggle")));
      const now = document.getElementById("now");
      if (now) now.addEventListener("click", () => act("/api/now"));

      const stored = sessionStorage.getItem("scroll");
      sessionStorage.removeItem("scroll");
      {{with .Scroll}}scrollArea({offset: {{.Offset}}, centre: {{.Centre}}});{{else}}if (stored) scrollArea(JSON.parse(stored));{{end}}
      {{if .ShrinkInMs}}setTimeout(reload, {{.ShrinkInMs}});{{end}}

      // vertical wheel scrolls the timeline when the page itself cannot scroll
      area.addEventListener("wheel", e => {
        const pageScrolls = document.documentElement.scrollHeight > window.innerHeight;
        if (!pageScrolls && Math.abs(e.deltaY) > Math.abs(e.deltaX)) {
          area.scrollLeft += e.deltaY;
          e.preventDefault();
        }
      }, {passive: false});

      let settle;
      area.addEventListener("scroll", () => {
        clearTimeout(settle);
        settle = setTimeout(() => post("/api/scroll", {offset: area.scrollLeft}), 200);
      });

      const focused = () => post("/api/focus").then(redraw);
      window.addEventListener("focus", focused);
      document.addEventListener("visibilitychange", () => {
        if (document.visibilityState === "visible") focused();
      });
      setInterval(redraw, 30000);
    </script>
  </body>
</html>
`
