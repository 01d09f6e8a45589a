package wordpress

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pbaille/mdpress/internal/domain"
)

const termStruct = `<struct>
<member><name>term_id</name><value><string>12</string></value></member>
<member><name>name</name><value><string>News</string></value></member>
<member><name>slug</name><value><string>news</string></value></member>
<member><name>term_group</name><value><string>0</string></value></member>
<member><name>term_taxonomy_id</name><value><string>13</string></value></member>
<member><name>taxonomy</name><value><string>category</string></value></member>
<member><name>description</name><value><string></string></value></member>
<member><name>parent</name><value><string>0</string></value></member>
<member><name>count</name><value><int>3</int></value></member>
<member><name>filter</name><value><string>raw</string></value></member>
</struct>`

func response(value string) string {
	return `<?xml version="1.0" encoding="UTF-8"?>
<methodResponse><params><param><value>` + value + `</value></param></params></methodResponse>`
}

func fault(code, message string) string {
	return `<?xml version="1.0" encoding="UTF-8"?>
<methodResponse><fault><value><struct>
<member><name>faultCode</name><value><int>` + code + `</int></value></member>
<member><name>faultString</name><value><string>` + message + `</string></value></member>
</struct></value></fault></methodResponse>`
}

var methodName = regexp.MustCompile(`<methodName>([^<]+)</methodName>`)

// fakeSite answers XML-RPC calls from a table of canned responses keyed by method
type fakeSite struct {
	mu        sync.Mutex
	responses map[string]string
	bodies    map[string]string
	delay     time.Duration
}

func newFakeSite(t *testing.T, responses map[string]string) (*fakeSite, *Client) {
	t.Helper()
	site := &fakeSite{responses: responses, bodies: map[string]string{}}
	srv := httptest.NewServer(site)
	t.Cleanup(srv.Close)

	c, err := New(Options{Endpoint: srv.URL + "/xmlrpc.php", User: "admin", Password: "secret", BlogID: 1})
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return site, c
}

func (s *fakeSite) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	m := methodName.FindStringSubmatch(string(body))
	if m == nil {
		http.Error(w, "no method", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	s.bodies[m[1]] = string(body)
	resp, ok := s.responses[m[1]]
	delay := s.delay
	s.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}
	if !ok {
		resp = fault("-32601", "server error. requested method does not exist.")
	}
	w.Header().Set("Content-Type", "text/xml")
	io.WriteString(w, resp)
}

func (s *fakeSite) body(method string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bodies[method]
}

func TestGetTerm(t *testing.T) {
	site, c := newFakeSite(t, map[string]string{"wp.getTerm": response(termStruct)})

	term, err := c.GetTerm(context.Background(), "category", "12")
	require.NoError(t, err)

	assert.Equal(t, domain.Term{
		ID: "12", GroupID: "0", TaxonomyID: "13", Taxonomy: "category",
		Name: "News", Slug: "news", ParentID: "0", Count: 3,
	}, *term)

	body := site.body("wp.getTerm")
	assert.Contains(t, body, "<string>admin</string>")
	assert.Contains(t, body, "<string>secret</string>")
	assert.Contains(t, body, "<string>category</string>")
}

func TestListTerms(t *testing.T) {
	_, c := newFakeSite(t, map[string]string{
		"wp.getTerms": response(`<array><data><value>` + termStruct + `</value></data></array>`),
	})

	terms, err := c.ListTerms(context.Background(), "category")
	require.NoError(t, err)
	require.Len(t, terms, 1)
	assert.Equal(t, "news", terms[0].Slug)
}

func TestGetPost(t *testing.T) {
	_, c := newFakeSite(t, map[string]string{"wp.getPost": response(`<struct>
<member><name>post_id</name><value><string>42</string></value></member>
<member><name>post_title</name><value><string>Hello</string></value></member>
<member><name>post_date</name><value><dateTime.iso8601>20150301T10:00:00</dateTime.iso8601></value></member>
<member><name>post_status</name><value><string>publish</string></value></member>
<member><name>post_type</name><value><string>page</string></value></member>
<member><name>post_name</name><value><string>hello</string></value></member>
<member><name>post_author</name><value><string>1</string></value></member>
<member><name>post_content</name><value><string>&lt;p&gt;hi&lt;/p&gt;</string></value></member>
<member><name>terms</name><value><array><data><value>` + termStruct + `</value></data></array></value></member>
</struct>`)})

	post, err := c.GetPost(context.Background(), "42")
	require.NoError(t, err)

	assert.Equal(t, "42", post.ID)
	assert.Equal(t, domain.PostTypePage, post.Type)
	assert.Equal(t, "hello", post.Slug)
	assert.Equal(t, "<p>hi</p>", post.Content)
	assert.Equal(t, 2015, post.Date.Year())
	assert.Nil(t, post.Modified)
	require.Len(t, post.Terms, 1)
	assert.Equal(t, "12", post.Terms[0].ID)
}

func TestNewPost_EncodesTermsByTaxonomy(t *testing.T) {
	site, c := newFakeSite(t, map[string]string{"wp.newPost": response(`<string>77</string>`)})

	id, err := c.NewPost(context.Background(), &domain.Post{
		Type: domain.PostTypePost, Title: "Hello", Slug: "hello", Author: "1",
		Status: domain.StatusPublish, Content: "<p>x</p>",
		Terms: []domain.Term{
			{ID: "3", Taxonomy: domain.TaxonomyCategory},
			{ID: "9", Taxonomy: domain.TaxonomyTag},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "77", id)

	body := site.body("wp.newPost")
	assert.Contains(t, body, "<name>post_title</name>")
	assert.Contains(t, body, "<name>post_tag</name>")
	assert.Contains(t, body, "<string>9</string>")
	assert.Contains(t, body, "<int>1</int>")
}

func TestEditTerm_OmitsEmptyParent(t *testing.T) {
	site, c := newFakeSite(t, map[string]string{"wp.editTerm": response(`<boolean>1</boolean>`)})

	ok, err := c.EditTerm(context.Background(), "9", domain.Term{ID: "9", Taxonomy: domain.TaxonomyTag, Name: "Go", Slug: "go"})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NotContains(t, site.body("wp.editTerm"), "<name>parent</name>")
}

func TestFaults(t *testing.T) {
	site, c := newFakeSite(t, map[string]string{
		"wp.getPost":  fault("403", "Incorrect username or password."),
		"wp.getTerm":  fault("404", "Invalid term ID."),
		"wp.getTerms": response(`<array><data></data></array>`),
	})

	_, err := c.GetPost(context.Background(), "1")
	assert.ErrorIs(t, err, domain.ErrCredential)

	_, err = c.GetTerm(context.Background(), "category", "99")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// the client keeps working after a fault
	terms, err := c.ListTerms(context.Background(), "category")
	require.NoError(t, err)
	assert.Empty(t, terms)
	assert.NotEmpty(t, site.body("wp.getTerms"))
}

func TestTimeout(t *testing.T) {
	site, _ := newFakeSite(t, map[string]string{"wp.getOptions": response(`<struct></struct>`)})
	site.delay = 200 * time.Millisecond

	srv := httptest.NewServer(site)
	defer srv.Close()
	c, err := New(Options{Endpoint: srv.URL, User: "u", Password: "p", Timeout: 20 * time.Millisecond})
	require.NoError(t, err)
	defer c.Close()

	_, err = c.GetOptions(context.Background(), nil)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestGetOptions(t *testing.T) {
	_, c := newFakeSite(t, map[string]string{"wp.getOptions": response(`<struct>
<member><name>blog_title</name><value><struct>
<member><name>desc</name><value><string>Site Title</string></value></member>
<member><name>readonly</name><value><boolean>0</boolean></value></member>
<member><name>value</name><value><string>My Blog</string></value></member>
</struct></value></member>
</struct>`)})

	options, err := c.GetOptions(context.Background(), []string{"blog_title"})
	require.NoError(t, err)
	require.Len(t, options, 1)
	assert.Equal(t, domain.Option{Name: "blog_title", Desc: "Site Title", Value: "My Blog"}, options[0])
}
