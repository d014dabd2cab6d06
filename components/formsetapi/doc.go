// Package formsetapi exposes formset replication and form rendering over
// net/http.
//
// POST <base>/replicate accepts a JSON body with an HTML document or
// fragment, the container id and the counter id, replicates the template
// entry and returns the updated markup. GET <base>/forms/{id} renders a
// registered form and GET <base>/forms/{id}/formsets/{prefix}/entry?index=n
// renders a single formset entry for clients that append entries themselves.
package formsetapi
