package mysql

const upsertHotelInfoSQL = `
INSERT INTO hotel_info
  (content_id, lang, rating, reviews_amount, description, facilities, photos, nearby, reviews)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
  rating         = VALUES(rating),
  reviews_amount = VALUES(reviews_amount),
  description    = VALUES(description),
  facilities     = VALUES(facilities),
  photos         = VALUES(photos),
  nearby         = VALUES(nearby),
  reviews        = VALUES(reviews),
  updated_at     = CURRENT_TIMESTAMP
`

const getHotelInfoSQL = `
SELECT rating, reviews_amount, description, facilities, photos, nearby, reviews
FROM hotel_info
WHERE content_id = ? AND lang = ?
`

const insertMissSQL = `
INSERT INTO ingest_misses (content_id, http_status, reason)
VALUES (?, ?, ?)
ON DUPLICATE KEY UPDATE http_status = VALUES(http_status), seen_at = CURRENT_TIMESTAMP
`
