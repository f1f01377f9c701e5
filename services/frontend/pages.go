package frontend

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// TodosPage is the single-page UI consuming the REST API from the
// browser. The markup is static; all data flows through fetch calls in
// static/app.js.
func TodosPage() templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := io.WriteString(w, todosPageHTML)
		return err
	})
}

const todosPageHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Todos</title>
<link rel="stylesheet" href="/static/styles.css">
</head>
<body>
<main>
<h1>Todos</h1>
<form class="todo-form" id="todo-form">
<input type="text" id="todo-title" placeholder="What needs doing?" autocomplete="off">
<button type="submit">Add</button>
</form>
<ul class="todo-list" id="todos"></ul>
<p class="meta">Backed by <code>/api/todos</code>.</p>
</main>
<script src="/static/app.js"></script>
</body>
</html>
`
