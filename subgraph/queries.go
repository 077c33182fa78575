package subgraph

import "context"

// canvasListQuery fetches every canvas-created record, newest first. The
// indexer has already decoded the factory event, so fields map straight
// onto descriptor fields.
const canvasListQuery = `query GetCanvasCreatedEvents {
  canvasCreateds(orderBy: blockTimestamp, orderDirection: desc) {
    id
    creator
    canvasContract
    nftContract
    marketplaceContract
    width
    height
    initialMintPrice
  }
}`

// activityFeedQuery fetches the three activity lists in one request via
// aliases, each bounded and newest-first.
const activityFeedQuery = `query GetActivityFeed($first: Int!) {
  mints: pixelMinteds(first: $first, orderBy: blockTimestamp, orderDirection: desc) {
    id
    blockTimestamp
    tokenId
    minter
  }
  sales: pixelSolds(first: $first, orderBy: blockTimestamp, orderDirection: desc) {
    id
    blockTimestamp
    tokenId
    seller
    buyer
    price
  }
  colorChanges: colorChangeds(first: $first, orderBy: blockTimestamp, orderDirection: desc) {
    id
    blockTimestamp
    tokenId
    owner
  }
}`

// CanvasCreatedRecord is one decoded factory event as the indexer stores
// it. Numeric fields are decimal strings.
type CanvasCreatedRecord struct {
	ID                  string `json:"id"`
	Creator             string `json:"creator"`
	CanvasContract      string `json:"canvasContract"`
	NFTContract         string `json:"nftContract"`
	MarketplaceContract string `json:"marketplaceContract"`
	Width               string `json:"width"`
	Height              string `json:"height"`
	InitialMintPrice    string `json:"initialMintPrice"`
}

// MintRecord is one pixel mint event.
type MintRecord struct {
	ID             string `json:"id"`
	BlockTimestamp string `json:"blockTimestamp"`
	TokenID        string `json:"tokenId"`
	Minter         string `json:"minter"`
}

// SaleRecord is one marketplace sale event.
type SaleRecord struct {
	ID             string `json:"id"`
	BlockTimestamp string `json:"blockTimestamp"`
	TokenID        string `json:"tokenId"`
	Seller         string `json:"seller"`
	Buyer          string `json:"buyer"`
	Price          string `json:"price"`
}

// ColorChangeRecord is one color change event.
type ColorChangeRecord struct {
	ID             string `json:"id"`
	BlockTimestamp string `json:"blockTimestamp"`
	TokenID        string `json:"tokenId"`
	Owner          string `json:"owner"`
}

// ActivityFeed bundles the three aliased lists of activityFeedQuery.
type ActivityFeed struct {
	Mints        []MintRecord        `json:"mints"`
	Sales        []SaleRecord        `json:"sales"`
	ColorChanges []ColorChangeRecord `json:"colorChanges"`
}

// CanvasList returns all canvas-created records, newest first.
func (c *Client) CanvasList(ctx context.Context) ([]CanvasCreatedRecord, error) {
	var data struct {
		CanvasCreateds []CanvasCreatedRecord `json:"canvasCreateds"`
	}
	if err := c.Query(ctx, canvasListQuery, nil, &data); err != nil {
		return nil, err
	}
	return data.CanvasCreateds, nil
}

// ActivityFeed returns the latest activity lists, limited to first items
// per kind.
func (c *Client) ActivityFeed(ctx context.Context, first int) (*ActivityFeed, error) {
	var data ActivityFeed
	vars := map[string]any{"first": first}
	if err := c.Query(ctx, activityFeedQuery, vars, &data); err != nil {
		return nil, err
	}
	return &data, nil
}
