package sqlinline

const QUpsertGoogleUser = `--sql 0098e11a-00f8-4a95-82b3-c5b55a2fdf4d
insert into users (id, google_sub, email, display_name, photo_url, tier, role, created_at, last_login_at)
values (gen_random_uuid(), $1::text, $2::text, $3::text, $4::text, 'FREE', 'user', now(), now())
on conflict (google_sub) do update set
    email = excluded.email,
    display_name = excluded.display_name,
    photo_url = excluded.photo_url,
    last_login_at = now()
returning id, google_sub, email, display_name, photo_url, tier, role, created_at, last_login_at;
`

const QSelectUserByID = `--sql 63ab43df-b93f-44c2-80dc-8977f5fc899e
select id, google_sub, email, display_name, photo_url, tier, role, created_at, last_login_at
from users
where id = $1::uuid
limit 1;
`

const QListUsers = `--sql 8c51b022-728d-4bdc-a6f4-b3e7d2e94384
select id, google_sub, email, display_name, photo_url, tier, role, created_at, last_login_at
from users
order by created_at desc;
`

const QSelectUserIDByEmail = `--sql 5d0e6c09-6a7b-41a5-9f58-2ad53f4f2b61
select id, tier
from users
where lower(email) = lower($1::text)
limit 1;
`

const QUpdateUserTier = `--sql 797acf17-1a14-4222-b4ca-c1d3b2688f6c
update users
set tier = $2::text
where id = $1::uuid;
`

const QDeleteUser = `--sql 35fc830b-0fb5-437b-96cf-8dd154185914
delete from users
where id = $1::uuid;
`
