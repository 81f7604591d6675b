package cli

import (
	"context"
	"flag"
	"fmt"

	"github.com/Studio24-sys/classifieds-api/pkg/api"
)

type pageFlags struct {
	page  *int
	limit *int
}

func addPageFlags(fs *flag.FlagSet) pageFlags {
	return pageFlags{
		page:  fs.Int("page", 1, "Page number"),
		limit: fs.Int("limit", 10, "Posts per page (max 50)"),
	}
}

type postFlags struct {
	title    *string
	content  *string
	location *string
	price    *string
	contact  *string
}

func addPostFlags(fs *flag.FlagSet) postFlags {
	return postFlags{
		title:    fs.String("title", "", "Post title"),
		content:  fs.String("content", "", "Post text"),
		location: fs.String("location", "", "Location"),
		price:    fs.String("price", "", "Price, non-negative integer"),
		contact:  fs.String("contact", "", "Contact phone"),
	}
}

// request собирает тело запроса только из явно указанных флагов
func (f postFlags) request(set map[string]bool) api.PostRequest {
	var req api.PostRequest
	if set["title"] {
		req.Title = f.title
	}
	if set["content"] {
		req.Content = f.content
	}
	if set["location"] {
		req.Location = optionalString(*f.location)
	}
	if set["price"] {
		req.Price = optionalPrice(*f.price)
	}
	if set["contact"] {
		req.Contact = optionalString(*f.contact)
	}
	return req
}

func (c *Cli) runPosts(ctx context.Context, args []string) error {
	fs := c.newFlagSet("posts")
	pf := addPageFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	list, err := c.api.ListPosts(ctx, *pf.page, *pf.limit)
	if err != nil {
		return err
	}

	c.io.Println("=== Posts ===")
	c.io.Println()
	c.printPostList(list)
	return nil
}

func (c *Cli) runMyPosts(ctx context.Context, args []string) error {
	fs := c.newFlagSet("my-posts")
	pf := addPageFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	token, err := c.token(ctx)
	if err != nil {
		return err
	}

	list, err := c.api.MyPosts(ctx, token, *pf.page, *pf.limit)
	if err != nil {
		return err
	}

	c.io.Println("=== My Posts ===")
	c.io.Println()
	c.printPostList(list)
	return nil
}

func (c *Cli) runPost(ctx context.Context, args []string) error {
	id, err := parseWithID(c.newFlagSet("post"), args)
	if err != nil {
		return err
	}

	post, err := c.api.GetPost(ctx, id)
	if err != nil {
		return err
	}

	c.printPost(post)
	c.io.Println()
	c.io.Println(post.Content)
	return nil
}

func (c *Cli) runCreatePost(ctx context.Context, args []string) error {
	fs := c.newFlagSet("create-post")
	pf := addPostFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	token, err := c.token(ctx)
	if err != nil {
		return err
	}

	// Обязательные поля можно ввести интерактивно
	if *pf.title, err = c.readRequired(*pf.title, "Title: "); err != nil {
		return err
	}
	if *pf.content, err = c.readRequired(*pf.content, "Content: "); err != nil {
		return err
	}

	set := setFlags(fs)
	set["title"], set["content"] = true, true

	post, err := c.api.CreatePost(ctx, token, pf.request(set))
	if err != nil {
		return err
	}

	c.io.Println("✓ Post created!")
	c.printPost(post)
	return nil
}

func (c *Cli) runUpdatePost(ctx context.Context, args []string) error {
	fs := c.newFlagSet("update-post")
	pf := addPostFlags(fs)
	id, err := parseWithID(fs, args)
	if err != nil {
		return err
	}

	set := setFlags(fs)
	if len(set) == 0 {
		return fmt.Errorf("nothing to update. Use -title, -content, -location, -price or -contact")
	}

	token, err := c.token(ctx)
	if err != nil {
		return err
	}

	post, err := c.api.UpdatePost(ctx, token, id, pf.request(set))
	if err != nil {
		return err
	}

	c.io.Println("✓ Post updated!")
	c.printPost(post)
	return nil
}

func (c *Cli) runDeletePost(ctx context.Context, args []string) error {
	id, err := parseWithID(c.newFlagSet("delete-post"), args)
	if err != nil {
		return err
	}

	token, err := c.token(ctx)
	if err != nil {
		return err
	}

	if err := c.api.DeletePost(ctx, token, id); err != nil {
		return err
	}

	c.io.Printf("✓ Post %s deleted\n", id)
	return nil
}
