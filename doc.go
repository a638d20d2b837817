// Package zen is a server-side MVC web framework. Controllers declare
// their routes and parameter bindings explicitly at startup; a metadata
// store records the declarations and a reflection-based injector resolves
// them into method arguments per request.
//
// A minimal application:
//
//	type TodoController struct {
//	    todos []string
//	}
//
//	func (c *TodoController) Routes(b *zen.Binder) {
//	    b.Prefix("/todos")
//	    b.GET("/", c.list, metadata.Ctx(0))
//	    b.POST("/", c.create, metadata.Ctx(0), metadata.Body(1)).
//	        Validate(zen.Schema{
//	            "title": {Type: validator.TypeString, Required: true, MaxLength: 120},
//	        })
//	}
//
//	func (c *TodoController) list(ctx zen.Context) any {
//	    return c.todos
//	}
//
//	func (c *TodoController) create(ctx zen.Context, body map[string]any) any {
//	    c.todos = append(c.todos, body["title"].(string))
//	    return map[string]any{"ok": true}
//	}
//
//	func main() {
//	    app, err := zen.New(zen.WithControllers(&TodoController{}))
//	    if err != nil {
//	        panic(err)
//	    }
//	    _ = app.Run(":8080")
//	}
//
// Authentication is handled by named security providers. Each provider
// owns a user entity, a password hasher, a token carrier and a session
// store; routes opt in with .Auth("name") and receive the caller's
// session through a declared parameter.
package zen
