package contacts

import (
	"context"
	"fmt"

	people "google.golang.org/api/people/v1"

	"github.com/teemow/quickstart/internal/instrumentation"
	"github.com/teemow/quickstart/internal/paging"
)

// ContactGroups returns one window of the groups matching q.
func (c *Client) ContactGroups(ctx context.Context, q GroupQuery) (paging.IndexPage[ContactGroup], error) {
	all, err := c.ContactGroupList(ctx)
	if err != nil {
		return paging.IndexPage[ContactGroup]{}, err
	}

	filtered := make([]ContactGroup, 0, len(all))
	for _, g := range all {
		if updatedWithin(g.Updated, q.UpdatedMin, q.UpdatedMax) {
			filtered = append(filtered, g)
		}
	}

	size := q.MaxResults
	if size <= 0 {
		size = DefaultPageSize
	}
	return paging.Window(filtered, q.StartIndex, size), nil
}

// ContactGroupList returns every group of the user, system groups included.
func (c *Client) ContactGroupList(ctx context.Context) ([]ContactGroup, error) {
	result := []ContactGroup{}
	err := c.observe(ctx, instrumentation.OperationList, "", func(ctx context.Context) error {
		return c.svc.ContactGroups.List().
			GroupFields(groupFields).
			PageSize(groupsPageSize).
			Pages(ctx, func(resp *people.ListContactGroupsResponse) error {
				for _, g := range resp.ContactGroups {
					result = append(result, toContactGroup(g))
				}
				return nil
			})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list contact groups: %w", err)
	}
	return result, nil
}

// ContactGroup retrieves a group by its URL.
func (c *Client) ContactGroup(ctx context.Context, url string) (*ContactGroup, error) {
	var group *people.ContactGroup
	err := c.observe(ctx, instrumentation.OperationGet, url, func(ctx context.Context) error {
		var err error
		group, err = c.svc.ContactGroups.Get(url).GroupFields(groupFields).Context(ctx).Do()
		return err
	})
	if err != nil {
		return nil, notFound(err, "get contact group", url)
	}

	result := toContactGroup(group)
	return &result, nil
}

// SaveContactGroup creates the group when it has no URL and renames it
// otherwise.
func (c *Client) SaveContactGroup(ctx context.Context, group ContactGroup) (*ContactGroup, error) {
	var saved *people.ContactGroup

	if group.URL == "" {
		req := &people.CreateContactGroupRequest{
			ContactGroup:    &people.ContactGroup{Name: group.Name},
			ReadGroupFields: groupFields,
		}
		err := c.observe(ctx, instrumentation.OperationCreate, "", func(ctx context.Context) error {
			var err error
			saved, err = c.svc.ContactGroups.Create(req).Context(ctx).Do()
			return err
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create contact group: %w", err)
		}
		result := toContactGroup(saved)
		return &result, nil
	}

	current, err := c.ContactGroup(ctx, group.URL)
	if err != nil {
		return nil, err
	}

	req := &people.UpdateContactGroupRequest{
		ContactGroup: &people.ContactGroup{
			ResourceName: group.URL,
			Etag:         current.ETag,
			Name:         group.Name,
		},
		UpdateGroupFields: "name",
		ReadGroupFields:   groupFields,
	}
	err = c.observe(ctx, instrumentation.OperationUpdate, group.URL, func(ctx context.Context) error {
		var err error
		saved, err = c.svc.ContactGroups.Update(group.URL, req).Context(ctx).Do()
		return err
	})
	if err != nil {
		return nil, notFound(err, "update contact group", group.URL)
	}

	result := toContactGroup(saved)
	return &result, nil
}

// DeleteContactGroup deletes a group. Its members are kept.
func (c *Client) DeleteContactGroup(ctx context.Context, url string) error {
	err := c.observe(ctx, instrumentation.OperationDelete, url, func(ctx context.Context) error {
		_, err := c.svc.ContactGroups.Delete(url).DeleteContacts(false).Context(ctx).Do()
		return err
	})
	if err != nil {
		return notFound(err, "delete contact group", url)
	}
	return nil
}
