package store

// SQL query constants organized by entity.
// All SQL lives here — PostgresStore methods reference these constants.

// Listing queries. The upsert is split into explicit lock/insert/update
// statements instead of ON CONFLICT because the history append is
// conditional on the previously stored price: the read-check-write sequence
// runs inside one transaction with the listing row locked.
const (
	queryLockListingPrice = `
		SELECT current_price
		FROM listings
		WHERE item_id = $1
		FOR UPDATE`

	queryInsertListing = `
		INSERT INTO listings (
			item_id, title, brand, current_price, buy_it_now_price,
			time_left, url, image_url, first_seen, last_updated
		) VALUES (
			@item_id, @title, @brand, @current_price, @buy_it_now_price,
			@time_left, @url, @image_url, now(), now()
		)
		RETURNING item_id, title, brand, current_price, buy_it_now_price,
			time_left, url, COALESCE(image_url, ''), first_seen, last_updated`

	queryUpdateListing = `
		UPDATE listings SET
			current_price = @current_price,
			time_left = @time_left,
			buy_it_now_price = COALESCE(@buy_it_now_price, buy_it_now_price),
			last_updated = now()
		WHERE item_id = @item_id
		RETURNING item_id, title, brand, current_price, buy_it_now_price,
			time_left, url, COALESCE(image_url, ''), first_seen, last_updated`

	queryGetListing = `
		SELECT item_id, title, brand, current_price, buy_it_now_price,
			time_left, url, COALESCE(image_url, ''), first_seen, last_updated
		FROM listings
		WHERE item_id = $1`

	queryListActiveListings = `
		SELECT item_id, title, brand, current_price, buy_it_now_price,
			time_left, url, COALESCE(image_url, ''), first_seen, last_updated
		FROM listings
		WHERE time_left IS NOT NULL
		ORDER BY first_seen`
)

// Price history queries.
const (
	queryInsertObservation = `
		INSERT INTO price_history (item_id, price, timestamp)
		VALUES ($1, $2, now())`

	queryPriceHistory = `
		SELECT item_id, price, timestamp,
			price - LAG(price) OVER (ORDER BY timestamp, id) AS price_change
		FROM price_history
		WHERE item_id = $1
		ORDER BY timestamp, id`

	queryPriceStatsByItem = `
		SELECT item_id, MAX(price), COUNT(*)
		FROM price_history
		GROUP BY item_id`
)

// Sold item queries.
const (
	queryInsertSoldItem = `
		INSERT INTO sold_items (
			item_id, title, brand, final_price, sold_date, condition, original_listing_id
		) VALUES (
			@item_id, @title, @brand, @final_price, @sold_date, @condition, @original_listing_id
		)
		ON CONFLICT (item_id) DO NOTHING`

	querySoldItemsSince = `
		SELECT item_id, title, brand, final_price, sold_date, condition, original_listing_id
		FROM sold_items
		WHERE sold_date >= $1
		ORDER BY sold_date`
)

// Brand statistics queries. AVG/MIN/MAX are NULL over empty sets, which maps
// onto the nullable aggregate fields.
const (
	queryBrandActiveStats = `
		SELECT COUNT(*), AVG(current_price), MIN(current_price), MAX(current_price)
		FROM listings
		WHERE brand = $1 AND time_left IS NOT NULL`

	queryBrandSoldStats = `
		SELECT COUNT(*), AVG(final_price), MIN(final_price), MAX(final_price)
		FROM sold_items
		WHERE brand = $1 AND sold_date >= $2`
)
