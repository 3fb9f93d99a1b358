package web

const (
	pageForm = "form"
	pageList = "list"
)

const layoutHTML = `<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8"/>
  <meta name="viewport" content="width=device-width, initial-scale=1"/>
  {{if .Refresh}}<meta http-equiv="refresh" content="2"/>{{end}}
  <title>{{.Title}} · HCP CRM</title>
  <style>
    body{font-family:ui-sans-serif,system-ui,-apple-system,Segoe UI,Roboto,Helvetica,Arial; margin:0; color:#0f172a; background:#f8fafc}
    nav{display:flex; gap:16px; padding:12px 24px; background:#ffffff; border-bottom:1px solid #e2e8f0}
    nav a{color:#475569; text-decoration:none; font-size:14px}
    nav a.active{color:#2563eb; font-weight:600}
    main{padding:24px}
    h1{font-size:20px; margin:0}
    .panel{background:#ffffff; border:1px solid #e2e8f0; border-radius:12px; padding:18px; box-shadow:0 1px 2px rgba(0,0,0,.04)}
    .muted{color:#475569}
    .btn{display:inline-block; padding:8px 14px; border-radius:8px; border:1px solid #cbd5e1; background:#ffffff; color:#0f172a; font-size:14px; cursor:pointer; text-decoration:none}
    .btn.primary{background:#2563eb; border-color:#2563eb; color:#ffffff}
    .btn:disabled{opacity:.5; cursor:not-allowed}
    label{display:block; font-size:12px; color:#475569; margin:10px 0 4px}
    input[type=text],input[type=date],input[type=time],select,textarea{width:100%; box-sizing:border-box; padding:8px; border:1px solid #cbd5e1; border-radius:8px; font:inherit}
    textarea[readonly]{background:#f1f5f9}
    .error{background:#fee2e2; border:1px solid #fecaca; color:#991b1b; padding:10px 14px; border-radius:8px; margin-bottom:16px}
    @media print{
      .no-print{display:none !important}
      body{background:#ffffff}
      nav{display:none}
      .grid{display:block}
      .card{break-inside:avoid; box-shadow:none; border:1px solid #94a3b8; margin-bottom:8px}
    }
  </style>
</head>
<body>
  <nav class="no-print">
    <a href="/" {{if eq .Page "form"}}class="active"{{end}}>Log Interaction</a>
    <a href="/interactions" {{if eq .Page "list"}}class="active"{{end}}>Interactions</a>
  </nav>
  <main>
    {{template "content" .}}
  </main>
</body>
</html>`

const formHTML = `{{define "content"}}
<div style="display:grid; grid-template-columns:minmax(0,3fr) minmax(0,2fr); gap:24px">
  <section class="panel">
    <div style="display:flex; justify-content:space-between; align-items:center">
      <h1>Log HCP Interaction</h1>
      <form method="post" action="/reset"><button class="btn" type="submit">New interaction</button></form>
    </div>
    <form id="interaction-form" method="post" action="/form">
      <label for="hcpName">HCP Name</label>
      <input type="text" id="hcpName" name="hcpName" value="{{index .Form "hcpName"}}" placeholder="Search or select HCP..."/>

      <div style="display:grid; grid-template-columns:1fr 1fr 1fr; gap:12px">
        <div>
          <label for="interactionType">Interaction Type</label>
          <select id="interactionType" name="interactionType">
            {{$current := index .Form "interactionType"}}
            {{range .Types}}<option value="{{.}}" {{if eq (print .) $current}}selected{{end}}>{{.}}</option>{{end}}
          </select>
        </div>
        <div>
          <label for="date">Date</label>
          <input type="date" id="date" name="date" value="{{index .Form "date"}}"/>
        </div>
        <div>
          <label for="time">Time</label>
          <input type="time" id="time" name="time" value="{{index .Form "time"}}"/>
        </div>
      </div>

      <label for="attendees">Attendees</label>
      <input type="text" id="attendees" name="attendees" value="{{index .Form "attendees"}}" placeholder="Enter names or search..."/>

      <label for="topics">Topics Discussed</label>
      <textarea id="topics" name="topics" rows="3" placeholder="Enter key discussion points...">{{index .Form "topics"}}</textarea>

      <label for="materialsDistributed">Materials Shared / Samples Distributed</label>
      <input type="text" id="materialsDistributed" name="materialsDistributed" value="{{index .Form "materialsDistributed"}}"/>

      <label>Observed/Inferred HCP Sentiment</label>
      <div>
        {{$sentiment := index .Form "sentiment"}}
        {{range .Sentiments}}
        <label style="display:inline-flex; gap:6px; margin-right:16px; font-size:14px; color:#0f172a">
          <input type="radio" name="sentiment" value="{{.}}" disabled {{if eq (print .) $sentiment}}checked{{end}}/> {{.}}
        </label>
        {{end}}
      </div>

      <label for="outcomes">Outcomes</label>
      <input type="text" id="outcomes" name="outcomes" value="{{index .Form "outcomes"}}" placeholder="Key outcomes or agreements..."/>

      <label for="followUp">Follow-up Actions</label>
      <textarea id="followUp" name="followUp" rows="2" placeholder="Enter next steps or tasks...">{{index .Form "followUp"}}</textarea>

      <label for="summary">AI Summary</label>
      <textarea id="summary" rows="3" readonly>{{index .Form "summary"}}</textarea>

      <div style="display:flex; gap:12px; margin-top:16px">
        <button class="btn" type="submit">Save changes</button>
        <button class="btn primary" type="button">Log</button>
      </div>
    </form>
  </section>

  <section class="panel" style="display:flex; flex-direction:column">
    <h1>AI Assistant</h1>
    <p class="muted" style="font-size:13px">Log an interaction via chat</p>
    <div id="chat" style="flex:1; overflow-y:auto; min-height:240px">
      {{range .Messages}}
      <div style="margin:8px 0; text-align:{{if eq (print .Role) "user"}}right{{else}}left{{end}}">
        <span style="display:inline-block; padding:8px 12px; border-radius:12px; white-space:pre-wrap; background:{{if eq (print .Role) "user"}}#dbeafe{{else}}#f1f5f9{{end}}">{{.Content}}</span>
      </div>
      {{end}}
      <div id="thinking" class="muted" {{if not .Loading}}hidden{{end}}>Thinking…</div>
    </div>
    <form id="chat-form" method="post" action="/chat" style="display:flex; gap:8px; margin-top:12px">
      <input type="text" name="message" autocomplete="off" placeholder="Describe interaction..." {{if .Loading}}disabled{{end}}/>
      <button id="send" class="btn primary" type="submit" {{if .Loading}}disabled{{end}}>Send</button>
    </form>
  </section>
</div>
<script>
  (function () {
    var editable = {{.Editable}};
    var form = document.getElementById('interaction-form');
    form.addEventListener('change', function () {
      navigator.sendBeacon('/form', new URLSearchParams(new FormData(form)));
    });
    document.getElementById('chat-form').addEventListener('submit', function (ev) {
      editable.forEach(function (name) {
        var el = form.elements[name];
        if (!el) { return; }
        var copy = document.createElement('input');
        copy.type = 'hidden';
        copy.name = name;
        copy.value = el.value;
        ev.target.appendChild(copy);
      });
      document.getElementById('thinking').hidden = false;
      document.getElementById('send').disabled = true;
    });
  })();
</script>
{{end}}`

const listHTML = `{{define "content"}}
<div style="display:flex; justify-content:space-between; align-items:center; margin-bottom:16px">
  <div>
    <h1>Logged Interactions</h1>
    <span class="muted">{{.View.Total}} Total Entries</span>
  </div>
  <div id="list-actions" class="no-print" style="display:flex; gap:12px">
    <button class="btn" type="button" onclick="window.print()">Export Report (Print)</button>
    <a class="btn primary" href="/">Log New Interaction</a>
  </div>
</div>

{{if .View.Err}}
<div class="error no-print">
  Could not load interactions: {{.ErrText}} <a href="/interactions">Retry</a>
</div>
{{else if not .View.Cards}}
<p class="muted">No interactions logged yet.</p>
{{end}}

<div class="grid" style="display:grid; grid-template-columns:repeat(auto-fill,minmax(280px,1fr)); gap:16px">
  {{range .View.Cards}}
  <a class="card panel" href="/interactions?selected={{.ID}}" style="display:block; color:inherit; text-decoration:none{{if .Selected}}; border-color:#2563eb{{end}}">
    <div style="display:flex; justify-content:space-between">
      <strong>{{.HCPName}}</strong>
      <span class="muted" style="font-size:12px">{{if .Virtual}}🖥 {{end}}{{.Type}}</span>
    </div>
    <p style="font-size:13px">{{.Topics}}</p>
    <div class="muted" style="display:flex; justify-content:space-between; font-size:12px">
      <span>{{.Date}}</span>
      <span>{{.Outcome}}</span>
    </div>
  </a>
  {{end}}
</div>

{{with .View.Selected}}
<div id="overlay" class="no-print" style="position:fixed; inset:0; background:rgba(15,23,42,.4); display:flex; align-items:center; justify-content:center">
  <div class="panel" style="width:min(640px,92vw); max-height:86vh; overflow-y:auto">
    <div style="display:flex; justify-content:space-between; align-items:center">
      <h1>{{.HCPName}}</h1>
      <a class="btn" href="/interactions">Close</a>
    </div>
    <p class="muted">{{.InteractionType}} · {{.Date}}{{if .Time}} at {{.Time}}{{end}}</p>
    <label>Attendees</label><div>{{.Attendees}}</div>
    <label>Topics</label><div style="white-space:pre-wrap">{{.Topics}}</div>
    <label>Materials Distributed</label><div>{{.MaterialsDistributed}}</div>
    <label>Outcomes</label><div>{{.Outcomes}}</div>
    <label>Follow-up</label><div style="white-space:pre-wrap">{{.FollowUp}}</div>
    {{if .Summary}}<label>Summary</label><div style="white-space:pre-wrap">{{.Summary}}</div>{{end}}
    <p class="muted" style="font-size:12px; margin-top:16px">Created {{.CreatedAt}} · Last updated {{.LastUpdated}}</p>
  </div>
</div>
{{end}}
{{end}}`
