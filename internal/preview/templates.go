package preview

import "html/template"

const layoutTemplate = `{{define "layout"}}<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{if .Heading}}{{.Heading}} - {{end}}{{.SiteTitle}}</title>
<link rel="stylesheet" href="/static/chroma.css">
<style>
body { display: grid; grid-template-columns: 14rem 1fr 14rem; gap: 1.5rem; font-family: sans-serif; margin: 0; }
nav, aside { padding: 1rem; font-size: 0.9rem; }
main { padding: 1rem 0; max-width: 52rem; }
.toc-3 { margin-left: 1rem; } .toc-4 { margin-left: 2rem; }
.current { font-weight: bold; }
</style>
</head>
<body>
<nav>
<form action="/search" method="get"><input type="search" name="q" value="{{.Query}}" placeholder="search"></form>
<ul>
{{range .Pages}}<li{{if eq .Key $.Current}} class="current"{{end}}><a href="/pages/{{.Key}}">{{.Title}}</a></li>
{{end}}</ul>
</nav>
<main>
{{if .Breadcrumb}}<p class="breadcrumb">{{.Breadcrumb}}</p>{{end}}
{{template "body" .}}
</main>
<aside>
{{range .TOC}}<div class="toc-{{.Level}}"><a href="#{{.ID}}">{{.Text}}</a></div>
{{end}}</aside>
</body>
</html>{{end}}`

const indexTemplate = `{{define "body"}}<h1>{{.SiteTitle}}</h1>
{{if not .Pages}}<p>{{.Empty}}</p>{{end}}{{end}}`

const pageTemplate = `{{define "body"}}{{if .NotFound}}<h1>{{.Heading}}</h1>
<p>{{.Empty}}</p>{{else}}{{.HTML}}{{end}}{{end}}`

const searchTemplate = `{{define "body"}}<h1>{{.Heading}}</h1>
{{if .Results}}<ul class="results">
{{range .Results}}<li><a href="/pages/{{.Key}}">{{.Title}}</a></li>
{{end}}</ul>{{else}}<p>{{.Empty}}</p>{{end}}{{end}}`

func parseTemplates() map[string]*template.Template {
	build := func(body string) *template.Template {
		return template.Must(template.Must(template.New("layout").Parse(layoutTemplate)).Parse(body))
	}
	return map[string]*template.Template{
		"index":  build(indexTemplate),
		"page":   build(pageTemplate),
		"search": build(searchTemplate),
	}
}
