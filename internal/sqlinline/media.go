package sqlinline

const QInsertMedia = `--sql f2a6cafe-80fc-4a7e-aa61-dd9917300877
insert into media (id, user_id, type, url, source_url, prompt, metadata, created_at, expires_at)
values ($1::uuid, $2::uuid, $3::text, $4::text, $5::text, $6::text, coalesce($7::jsonb, '{}'::jsonb), $8::timestamptz, $9::timestamptz);
`

const QListMediaByUser = `--sql c7569e88-4068-4ddd-a142-dd43f5316ed3
select id, user_id, type, url, source_url, prompt, metadata, created_at, expires_at
from media
where user_id = $1::uuid
  and ($2::text = '' or type = $2::text)
order by created_at desc;
`

const QDeleteMedia = `--sql 0f3615d3-24e1-41db-9c9b-77eb838fdc9e
delete from media
where id = $1::uuid
  and user_id = $2::uuid;
`

const QDeleteMediaByIDs = `--sql 0fa6bea6-f096-4c7f-8a7f-8515eb3347e4
delete from media
where id = any($1::uuid[]);
`
