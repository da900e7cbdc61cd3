/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package github

import (
    "context"
    "fmt"
    "strconv"
    "time"

    "github.com/digdir/bod-roadmapreport/internal/domain"
)

const itemsQuery = `query($projectId: ID!, $cursor: String) {
  node(id: $projectId) {
    ... on ProjectV2 {
      items(first: 100, after: $cursor) {
        pageInfo { hasNextPage endCursor }
        edges {
          node {
            content {
              ... on Issue {
                number
                title
                closedAt
                labels(first: 20) { nodes { name } }
              }
            }
            fieldValues(first: 30) {
              nodes {
                ... on ProjectV2ItemFieldTextValue { field { ... on ProjectV2FieldCommon { name } } text }
                ... on ProjectV2ItemFieldSingleSelectValue { field { ... on ProjectV2FieldCommon { name } } name }
                ... on ProjectV2ItemFieldNumberValue { field { ... on ProjectV2FieldCommon { name } } number }
                ... on ProjectV2ItemFieldDateValue { field { ... on ProjectV2FieldCommon { name } } date }
              }
            }
          }
        }
      }
    }
  }
}`

type itemsResponse struct {
    Data struct {
        Node *struct {
            Items *struct {
                PageInfo struct {
                    HasNextPage bool   `json:"hasNextPage"`
                    EndCursor   string `json:"endCursor"`
                } `json:"pageInfo"`
                Edges []itemEdge `json:"edges"`
            } `json:"items"`
        } `json:"node"`
    } `json:"data"`
    Errors []struct {
        Message string `json:"message"`
    } `json:"errors"`
}

type itemEdge struct {
    Node struct {
        Content *struct {
            Number   int        `json:"number"`
            Title    string     `json:"title"`
            ClosedAt *time.Time `json:"closedAt"`
            Labels   struct {
                Nodes []struct {
                    Name string `json:"name"`
                } `json:"nodes"`
            } `json:"labels"`
        } `json:"content"`
        FieldValues struct {
            Nodes []fieldValueNode `json:"nodes"`
        } `json:"fieldValues"`
    } `json:"node"`
}

type fieldValueNode struct {
    Field *struct {
        Name string `json:"name"`
    } `json:"field"`
    Text   *string  `json:"text"`
    Name   *string  `json:"name"`
    Number *float64 `json:"number"`
    Date   *string  `json:"date"`
}

// value coalesces the mutually exclusive payload shapes to a string.
func (n fieldValueNode) value() string {
    switch {
    case n.Text != nil:
        return *n.Text
    case n.Name != nil:
        return *n.Name
    case n.Number != nil:
        return strconv.FormatFloat(*n.Number, 'f', -1, 64)
    case n.Date != nil:
        return *n.Date
    }
    return ""
}

// ProjectItems walks the project board cursor by cursor and flattens every
// issue-backed item into a domain.Issue. When requiredLabel is non-empty,
// only issues carrying that exact label are kept. Any non-success response
// aborts the whole fetch; partial pages are never returned.
func (c *Client) ProjectItems(ctx context.Context, projectID, requiredLabel string) ([]domain.Issue, error) {
    var out []domain.Issue
    var cursor *string
    for {
        vars := map[string]any{"projectId": projectID, "cursor": cursor}
        var page itemsResponse
        if err := c.do(ctx, itemsQuery, vars, &page); err != nil { return nil, err }
        if len(page.Errors) > 0 {
            return nil, fmt.Errorf("github graphql: %s", page.Errors[0].Message)
        }
        // a missing node or items block means there is nothing to page through
        if page.Data.Node == nil || page.Data.Node.Items == nil { break }
        items := page.Data.Node.Items
        for _, e := range items.Edges {
            content := e.Node.Content
            if content == nil { continue }
            issue := domain.Issue{
                Number:   content.Number,
                Title:    content.Title,
                ClosedAt: content.ClosedAt,
            }
            for _, l := range content.Labels.Nodes {
                issue.Labels = append(issue.Labels, l.Name)
            }
            for _, fv := range e.Node.FieldValues.Nodes {
                if fv.Field == nil || fv.Field.Name == "" { continue }
                issue.Fields = append(issue.Fields, domain.FieldValue{Name: fv.Field.Name, Value: fv.value()})
            }
            if requiredLabel != "" && !issue.HasLabel(requiredLabel) { continue }
            out = append(out, issue)
        }
        if !items.PageInfo.HasNextPage { break }
        cur := items.PageInfo.EndCursor
        cursor = &cur
    }
    c.log.Info().Int("issues", len(out)).Msg("github: project items fetched")
    return out, nil
}
